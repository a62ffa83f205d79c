package hierarchy

import (
	"fmt"

	"github.com/sarchlab/pagetrace/mem"
	"github.com/sarchlab/pagetrace/mem/cache"
)

// Config holds the geometry of the two cache levels. L1 is always
// direct-mapped. L3 is round-robin unless L3Policy says otherwise.
type Config struct {
	L1Size     uint64              `json:"l1Size"`
	L1LineSize int                 `json:"l1LineSize"`
	L3Size     uint64              `json:"l3Size"`
	L3LineSize int                 `json:"l3LineSize"`
	L3Ways     int                 `json:"l3Ways"`
	L3Policy   cache.ReplacePolicy `json:"l3Policy"`
}

// DefaultConfig returns the geometry of the traced machine: a 64KB
// direct-mapped L1 and an 8MB 16-way L3, both with 64B lines.
func DefaultConfig() Config {
	return Config{
		L1Size:     64 * mem.KB,
		L1LineSize: 64,
		L3Size:     8192 * mem.KB,
		L3LineSize: 64,
		L3Ways:     16,
		L3Policy:   cache.RoundRobin,
	}
}

func (c Config) l1Builder() cache.Builder {
	return cache.MakeBuilder().
		WithByteSize(c.L1Size).
		WithBlockSize(c.L1LineSize).
		WithWayAssociativity(1).
		WithReplacePolicy(cache.DirectMapped)
}

func (c Config) l3Builder() cache.Builder {
	policy := c.L3Policy
	if policy == "" {
		policy = cache.RoundRobin
	}

	return cache.MakeBuilder().
		WithByteSize(c.L3Size).
		WithBlockSize(c.L3LineSize).
		WithWayAssociativity(c.L3Ways).
		WithReplacePolicy(policy)
}

// Validate checks that both levels can be built.
func (c Config) Validate() error {
	if err := c.l1Builder().Validate(); err != nil {
		return fmt.Errorf("L1: %w", err)
	}

	if err := c.l3Builder().Validate(); err != nil {
		return fmt.Errorf("L3: %w", err)
	}

	return nil
}
