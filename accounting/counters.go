// Package accounting keeps page-granularity access counts for each traced
// thread.
package accounting

// PageSize is the granularity of the accounting, in bytes.
const PageSize = 4096

// PageOf returns the page number of an address.
func PageOf(addr uint64) uint64 {
	return addr / PageSize
}

// PageCounters counts the accesses of one thread, per page.
//
// The WithCache maps count only the accesses that missed in every cache
// level. The WithoutCache maps count every access. The names are part of the
// report format and are kept as they are.
//
// PageCounters is owned by a single thread and is not safe for concurrent
// use.
type PageCounters struct {
	ThreadID uint32

	ReadWithCache     map[uint64]uint64
	ReadWithoutCache  map[uint64]uint64
	WriteWithCache    map[uint64]uint64
	WriteWithoutCache map[uint64]uint64
}

// NewPageCounters creates empty counters for a thread.
func NewPageCounters(threadID uint32) *PageCounters {
	return &PageCounters{
		ThreadID:          threadID,
		ReadWithCache:     make(map[uint64]uint64),
		ReadWithoutCache:  make(map[uint64]uint64),
		WriteWithCache:    make(map[uint64]uint64),
		WriteWithoutCache: make(map[uint64]uint64),
	}
}

// Record counts one access to addr.
func (c *PageCounters) Record(addr uint64, isWrite bool, hit bool) {
	page := PageOf(addr)

	if isWrite {
		c.WriteWithoutCache[page]++
		if !hit {
			c.WriteWithCache[page]++
		}

		return
	}

	c.ReadWithoutCache[page]++
	if !hit {
		c.ReadWithCache[page]++
	}
}

// NumAccesses returns the number of accesses recorded.
func (c *PageCounters) NumAccesses() uint64 {
	var n uint64

	for _, count := range c.ReadWithoutCache {
		n += count
	}

	for _, count := range c.WriteWithoutCache {
		n += count
	}

	return n
}
