package cache

// A VictimFinder decides which block should be evicted.
type VictimFinder interface {
	FindVictim(set *Set) *Block
}

// DirectMappedVictimFinder always evicts the only block of a 1-way set.
type DirectMappedVictimFinder struct{}

// NewDirectMappedVictimFinder returns a newly constructed victim finder for
// direct-mapped caches.
func NewDirectMappedVictimFinder() *DirectMappedVictimFinder {
	return &DirectMappedVictimFinder{}
}

// FindVictim returns the first block of the set.
func (e *DirectMappedVictimFinder) FindVictim(set *Set) *Block {
	return set.Blocks[0]
}

// RoundRobinVictimFinder evicts blocks in a fixed cyclic order. The order
// only depends on how many replacements the set has seen, never on which
// blocks were recently hit.
type RoundRobinVictimFinder struct{}

// NewRoundRobinVictimFinder returns a newly constructed round-robin evictor.
func NewRoundRobinVictimFinder() *RoundRobinVictimFinder {
	return &RoundRobinVictimFinder{}
}

// FindVictim returns the block the set points to and advances the pointer.
func (e *RoundRobinVictimFinder) FindVictim(set *Set) *Block {
	victim := set.Blocks[set.NextVictim]
	set.NextVictim = (set.NextVictim + 1) % len(set.Blocks)

	return victim
}

// recencyRanked is implemented by the victim finders that read the LRUQueue.
type recencyRanked interface {
	ranksByRecency()
}

// LRUVictimFinder evicts the least recently used block.
type LRUVictimFinder struct{}

func (e *LRUVictimFinder) ranksByRecency() {}

// NewLRUVictimFinder returns a newly constructed lru evictor.
func NewLRUVictimFinder() *LRUVictimFinder {
	return &LRUVictimFinder{}
}

// FindVictim returns an invalid block if there is one, or the least recently
// used block otherwise.
func (e *LRUVictimFinder) FindVictim(set *Set) *Block {
	for _, blockIndex := range set.LRUQueue {
		block := set.Blocks[blockIndex]
		if !block.IsValid {
			return block
		}
	}

	return set.Blocks[set.LRUQueue[0]]
}
