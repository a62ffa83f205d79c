package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrZeroVector is returned when the similarity of an all-zero vector is
// requested.
var ErrZeroVector = errors.New("zero vector has no direction")

// CosineSimilarity returns the cosine of the angle between a and b.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector lengths differ: %d and %d", len(a), len(b))
	}

	var sumxx, sumxy, sumyy float64

	for i := range a {
		x, y := a[i], b[i]
		sumxx += x * x
		sumyy += y * y
		sumxy += x * y
	}

	if sumxx == 0 || sumyy == 0 {
		return 0, ErrZeroVector
	}

	return sumxy / math.Sqrt(sumxx*sumyy), nil
}

// AlignPages turns two page count maps into vectors over the union of their
// pages, ordered by page number. A page missing from one side counts as 0.
func AlignPages(a, b map[uint64]uint64) ([]float64, []float64) {
	union := make(map[uint64]struct{}, len(a)+len(b))
	for p := range a {
		union[p] = struct{}{}
	}

	for p := range b {
		union[p] = struct{}{}
	}

	pages := make([]uint64, 0, len(union))
	for p := range union {
		pages = append(pages, p)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })

	va := make([]float64, len(pages))
	vb := make([]float64, len(pages))

	for i, p := range pages {
		va[i] = float64(a[p])
		vb[i] = float64(b[p])
	}

	return va, vb
}
