// Package mem holds the units and address helpers shared by the memory
// models.
package mem

import (
	"fmt"
	"strconv"
	"strings"
)

// Byte size units.
const (
	KB uint64 = 1 << 10
	MB uint64 = 1 << 20
	GB uint64 = 1 << 30
)

// ParseByteSize parses a size such as "64", "64K", "64KB", "64KiB", or "8M".
func ParseByteSize(s string) (uint64, error) {
	str := strings.ToUpper(strings.TrimSpace(s))
	str = strings.TrimSuffix(str, "B")
	str = strings.TrimSuffix(str, "I")

	unit := uint64(1)

	switch {
	case strings.HasSuffix(str, "K"):
		unit = KB
	case strings.HasSuffix(str, "M"):
		unit = MB
	case strings.HasSuffix(str, "G"):
		unit = GB
	}

	if unit != 1 {
		str = str[:len(str)-1]
	}

	n, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	return n * unit, nil
}
