// Package cache provides a functional model of an associative cache. It only
// classifies accesses into hits and misses and never stores data.
package cache

// LevelStats counts what happened in a cache level.
type LevelStats struct {
	Accesses  uint64 `json:"accesses"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// A Level is one level of cache, for example, the L1 data cache.
//
// A Level is not safe for concurrent use. Callers that share a Level between
// goroutines must serialize the calls to Access.
type Level struct {
	name      string
	directory Directory
	stats     LevelStats
}

// Name returns the name of the level.
func (l *Level) Name() string {
	return l.name
}

// Directory returns the tag directory of the level.
func (l *Level) Directory() Directory {
	return l.directory
}

// Stats returns the counters collected so far.
func (l *Level) Stats() LevelStats {
	return l.stats
}

// Access looks up addr and reports if it hits. A miss always allocates a
// line, regardless of the access type.
func (l *Level) Access(addr uint64, accessType AccessType) bool {
	l.stats.Accesses++

	block, hit := l.directory.Lookup(addr)
	if hit {
		l.stats.Hits++
		l.touch(block, accessType)

		return true
	}

	l.stats.Misses++

	victim := l.directory.FindVictim(addr)
	if victim.IsValid {
		l.stats.Evictions++
	}

	victim.Tag = l.directory.Tag(addr)
	victim.IsValid = true
	victim.IsDirty = false
	l.touch(victim, accessType)

	return false
}

func (l *Level) touch(block *Block, accessType AccessType) {
	if accessType == AccessTypeStore {
		block.IsDirty = true
	}

	l.directory.Visit(block)
}

// Reset invalidates all the lines and clears the counters.
func (l *Level) Reset() {
	l.directory.Reset()
	l.stats = LevelStats{}
}
