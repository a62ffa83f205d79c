package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// PageCounts maps a page number to a number of accesses. In JSON, both the
// page numbers and the counts are decimal strings.
type PageCounts map[uint64]uint64

// Pages returns the page numbers in increasing order.
func (c PageCounts) Pages() []uint64 {
	pages := make([]uint64, 0, len(c))
	for page := range c {
		pages = append(pages, page)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })

	return pages
}

// Counts returns the counts ordered by page number.
func (c PageCounts) Counts() []uint64 {
	pages := c.Pages()
	counts := make([]uint64, len(pages))

	for i, page := range pages {
		counts[i] = c[page]
	}

	return counts
}

// Total returns the sum of all the counts.
func (c PageCounts) Total() uint64 {
	var total uint64
	for _, count := range c {
		total += count
	}

	return total
}

// MarshalJSON renders the counts as an object of decimal strings.
func (c PageCounts) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(c))
	for page, count := range c {
		m[strconv.FormatUint(page, 10)] = strconv.FormatUint(count, 10)
	}

	return json.Marshal(m)
}

// UnmarshalJSON parses an object of decimal strings. Counts written as JSON
// numbers are accepted as well.
func (c *PageCounts) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	counts := make(PageCounts, len(raw))

	for key, value := range raw {
		page, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid page number %q: %w", key, err)
		}

		count, err := parseCount(value)
		if err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}

		counts[page] = count
	}

	*c = counts

	return nil
}

func parseCount(value json.RawMessage) (uint64, error) {
	var str string
	if err := json.Unmarshal(value, &str); err != nil {
		var num uint64
		if err := json.Unmarshal(value, &num); err != nil {
			return 0, fmt.Errorf("invalid count %s", string(value))
		}

		return num, nil
	}

	count, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", str, err)
	}

	return count, nil
}

// Merge returns the page-wise sum of the given counts. Absent pages count as
// zero. None of the arguments are modified.
func Merge(counts ...PageCounts) PageCounts {
	merged := make(PageCounts)
	for _, c := range counts {
		mergeInto(merged, c)
	}

	return merged
}

func mergeInto(dst PageCounts, src map[uint64]uint64) {
	for page, count := range src {
		dst[page] += count
	}
}
