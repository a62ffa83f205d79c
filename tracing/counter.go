package tracing

import (
	"sync/atomic"

	"github.com/sarchlab/pagetrace/mem/cache"
	"github.com/sarchlab/pagetrace/mem/cache/hierarchy"
	"github.com/sarchlab/pagetrace/sim/hooking"
)

// AccessCounts is a snapshot of an AccessCounter.
type AccessCounts struct {
	Reads      uint64 `json:"reads"`
	Writes     uint64 `json:"writes"`
	L1Hits     uint64 `json:"l1_hits"`
	L3Hits     uint64 `json:"l3_hits"`
	BothMissed uint64 `json:"both_missed"`
}

// AccessCounter keeps running totals that can be read while accesses are
// still being classified.
type AccessCounter struct {
	reads      atomic.Uint64
	writes     atomic.Uint64
	l1Hits     atomic.Uint64
	l3Hits     atomic.Uint64
	bothMissed atomic.Uint64
}

// NewAccessCounter creates a counter with all totals at zero.
func NewAccessCounter() *AccessCounter {
	return &AccessCounter{}
}

// Func counts the access.
func (c *AccessCounter) Func(ctx hooking.HookCtx) {
	outcome, ok := ctx.Item.(hierarchy.AccessOutcome)
	if !ok {
		return
	}

	if outcome.Type == cache.AccessTypeStore {
		c.writes.Add(1)
	} else {
		c.reads.Add(1)
	}

	if outcome.L1Hit {
		c.l1Hits.Add(1)
	}

	if outcome.L3Hit {
		c.l3Hits.Add(1)
	}

	if !outcome.Hit() {
		c.bothMissed.Add(1)
	}
}

// Counts returns the current totals.
func (c *AccessCounter) Counts() AccessCounts {
	return AccessCounts{
		Reads:      c.reads.Load(),
		Writes:     c.writes.Load(),
		L1Hits:     c.l1Hits.Load(),
		L3Hits:     c.l3Hits.Load(),
		BothMissed: c.bothMissed.Load(),
	}
}
