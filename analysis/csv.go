package analysis

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
)

// WritePageCSV writes one row per page with the number of accesses that
// missed the caches and the number of all accesses, ready for plotting.
func WritePageCSV(w io.Writer, withCache, withoutCache map[uint64]uint64) error {
	pages := make([]uint64, 0, len(withoutCache))
	for p := range withoutCache {
		pages = append(pages, p)
	}

	for p := range withCache {
		if _, ok := withoutCache[p]; !ok {
			pages = append(pages, p)
		}
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })

	writer := csv.NewWriter(w)

	err := writer.Write([]string{"page", "with_cache", "without_cache"})
	if err != nil {
		return err
	}

	for _, p := range pages {
		err = writer.Write([]string{
			strconv.FormatUint(p, 10),
			strconv.FormatUint(withCache[p], 10),
			strconv.FormatUint(withoutCache[p], 10),
		})
		if err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}
