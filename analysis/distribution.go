// Package analysis computes summaries of page count reports, such as how the
// access counts are distributed and how similar two runs are.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Distribution groups counts into buckets of bucketSize and returns how many
// counts fall into each bucket. Bucket b holds the counts in
// [b*bucketSize, (b+1)*bucketSize).
func Distribution(counts []uint64, bucketSize uint64) (map[uint64]uint64, error) {
	if bucketSize == 0 {
		return nil, errors.New("bucket size must be positive")
	}

	buckets := make(map[uint64]uint64)
	for _, c := range counts {
		buckets[c/bucketSize]++
	}

	return buckets, nil
}

// A Bucket is one entry of a distribution.
type Bucket struct {
	Bucket    uint64
	Frequency uint64
}

// MostCommon orders the buckets by decreasing frequency. Ties are broken by
// the bucket number.
func MostCommon(dist map[uint64]uint64) []Bucket {
	buckets := make([]Bucket, 0, len(dist))
	for b, f := range dist {
		buckets = append(buckets, Bucket{Bucket: b, Frequency: f})
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Frequency != buckets[j].Frequency {
			return buckets[i].Frequency > buckets[j].Frequency
		}

		return buckets[i].Bucket < buckets[j].Bucket
	})

	return buckets
}

// PercentileSlice returns the first elements of elems that make up pct
// percent of it, using the nearest-rank method. The caller sorts elems. Any
// pct in (0, 100] selects at least one element.
func PercentileSlice(elems []uint64, pct float64) ([]uint64, error) {
	if pct <= 0 || pct > 100 {
		return nil, fmt.Errorf("percentile %v out of (0, 100]", pct)
	}

	if len(elems) == 0 {
		return nil, errors.New("no elements")
	}

	n := int(math.Ceil(pct / 100 * float64(len(elems))))

	return elems[:n], nil
}

// SortDescending returns a copy of counts, largest first.
func SortDescending(counts []uint64) []uint64 {
	sorted := make([]uint64, len(counts))
	copy(sorted, counts)

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	return sorted
}
