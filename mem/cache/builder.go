package cache

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pagetrace/mem"
)

// ReplacePolicy selects how a set picks the block to evict.
type ReplacePolicy string

// All the supported replacement policies.
const (
	DirectMapped ReplacePolicy = "directMapped"
	RoundRobin   ReplacePolicy = "roundRobin"
	LRU          ReplacePolicy = "lru"
)

// Builder can build cache levels.
type Builder struct {
	byteSize         uint64
	blockSize        int
	wayAssociativity int
	replacePolicy    ReplacePolicy
}

// MakeBuilder creates a new builder with a 64KB direct-mapped configuration.
func MakeBuilder() Builder {
	return Builder{
		byteSize:         64 * mem.KB,
		blockSize:        64,
		wayAssociativity: 1,
		replacePolicy:    DirectMapped,
	}
}

// WithByteSize sets the capacity of the cache.
func (b Builder) WithByteSize(byteSize uint64) Builder {
	b.byteSize = byteSize
	return b
}

// WithBlockSize sets the number of bytes in a cache line.
func (b Builder) WithBlockSize(blockSize int) Builder {
	b.blockSize = blockSize
	return b
}

// WithWayAssociativity sets the number of blocks in each set.
func (b Builder) WithWayAssociativity(wayAssociativity int) Builder {
	b.wayAssociativity = wayAssociativity
	return b
}

// WithReplacePolicy sets the replacement policy.
func (b Builder) WithReplacePolicy(policy ReplacePolicy) Builder {
	b.replacePolicy = policy
	return b
}

// Build builds a cache level.
func (b Builder) Build(name string) *Level {
	b.mustBeValidGeometry()

	setSize := uint64(b.blockSize) * uint64(b.wayAssociativity)
	numSets := int(b.byteSize / setSize)

	victimFinder := b.createVictimFinder()
	directory := NewDirectory(
		numSets, b.wayAssociativity, b.blockSize, victimFinder)

	return &Level{
		name:      name,
		directory: directory,
	}
}

func (b Builder) createVictimFinder() VictimFinder {
	switch b.replacePolicy {
	case DirectMapped:
		return NewDirectMappedVictimFinder()
	case RoundRobin:
		return NewRoundRobinVictimFinder()
	case LRU:
		return NewLRUVictimFinder()
	default:
		panic("unknown replace policy: " + string(b.replacePolicy))
	}
}

// Validate reports if the builder describes a cache that can be built.
func (b Builder) Validate() error {
	if b.blockSize <= 0 || b.wayAssociativity <= 0 {
		return fmt.Errorf(
			"invalid cache geometry: block size %d, %d ways",
			b.blockSize, b.wayAssociativity)
	}

	switch b.replacePolicy {
	case DirectMapped, RoundRobin, LRU:
	default:
		return fmt.Errorf("unknown replace policy: %q", b.replacePolicy)
	}

	if b.replacePolicy == DirectMapped && b.wayAssociativity != 1 {
		return errors.New("direct-mapped cache must be 1-way associative")
	}

	setSize := uint64(b.blockSize) * uint64(b.wayAssociativity)
	if b.byteSize == 0 || b.byteSize%setSize != 0 {
		return fmt.Errorf(
			"cache of %d bytes must have a integer number of %d-byte sets",
			b.byteSize, setSize)
	}

	return nil
}

func (b Builder) mustBeValidGeometry() {
	if err := b.Validate(); err != nil {
		panic(err)
	}
}
