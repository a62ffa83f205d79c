package accounting

import "sync"

// Registry holds the counters of every thread that has started. Counters are
// never removed from All, but only running threads can be looked up.
type Registry struct {
	lock     sync.RWMutex
	all      []*PageCounters
	byThread map[uint32]*PageCounters
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byThread: make(map[uint32]*PageCounters),
	}
}

// CreateForThread allocates the counters of a thread that has just started.
// If the thread ID is reused, the new counters take over the lookup while
// the old ones stay in the registry.
func (r *Registry) CreateForThread(threadID uint32) *PageCounters {
	counters := NewPageCounters(threadID)

	r.lock.Lock()
	defer r.lock.Unlock()

	r.all = append(r.all, counters)
	r.byThread[threadID] = counters

	return counters
}

// Lookup returns the counters of a running thread.
func (r *Registry) Lookup(threadID uint32) (*PageCounters, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	counters, ok := r.byThread[threadID]

	return counters, ok
}

// Release ends the lookup of a thread. Its counters stay in All.
func (r *Registry) Release(threadID uint32) {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.byThread, threadID)
}

// All returns every counter ever created, in creation order.
func (r *Registry) All() []*PageCounters {
	r.lock.Lock()
	defer r.lock.Unlock()

	all := make([]*PageCounters, len(r.all))
	copy(all, r.all)

	return all
}

// Len returns the number of counters created.
func (r *Registry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return len(r.all)
}
