// Package hierarchy combines a direct-mapped L1 and a round-robin L3 into the
// shared cache state that every traced thread accesses.
package hierarchy

import (
	"sync"

	"github.com/sarchlab/pagetrace/mem/cache"
	"github.com/sarchlab/pagetrace/sim/hooking"
)

// HookPosAccess marks that the hierarchy has classified an access. The hook
// item is an AccessOutcome.
var HookPosAccess = &hooking.HookPos{Name: "Access"}

// Access describes one memory operand of an executed instruction.
type Access struct {
	ThreadID uint32
	IP       uint64
	Address  uint64
	Type     cache.AccessType
}

// AccessOutcome is what the hierarchy reports to hooks after an access.
type AccessOutcome struct {
	Access

	L1Hit bool
	L3Hit bool
}

// Hit tells if either level hit.
func (o AccessOutcome) Hit() bool {
	return o.L1Hit || o.L3Hit
}

// Hierarchy is the process-wide cache state.
//
// A single lock covers both levels, so every access from every thread is
// serialized. Hooks run while the lock is held and must not call back into the
// hierarchy.
type Hierarchy struct {
	hooking.HookableBase

	name string
	lock sync.Mutex
	l1   *cache.Level
	l3   *cache.Level
}

// Name returns the name of the hierarchy.
func (h *Hierarchy) Name() string {
	return h.name
}

// Classify probes both levels and tells if either of them hits.
func (h *Hierarchy) Classify(addr uint64, accessType cache.AccessType) bool {
	return h.ClassifyFor(0, addr, accessType)
}

// ClassifyFor is Classify with the thread that issued the access, which is
// passed on to the hooks.
func (h *Hierarchy) ClassifyFor(
	threadID uint32,
	addr uint64,
	accessType cache.AccessType,
) bool {
	return h.ClassifyAccess(Access{
		ThreadID: threadID,
		Address:  addr,
		Type:     accessType,
	})
}

// ClassifyAccess probes both levels under the hierarchy lock and tells if
// either of them hits.
func (h *Hierarchy) ClassifyAccess(access Access) bool {
	h.lock.Lock()
	defer h.lock.Unlock()

	// L3 is probed even when L1 hits.
	l1Hit := h.l1.Access(access.Address, access.Type)
	l3Hit := h.l3.Access(access.Address, access.Type)

	if h.NumHooks() > 0 {
		h.InvokeHook(hooking.HookCtx{
			Domain: h,
			Pos:    HookPosAccess,
			Item: AccessOutcome{
				Access: access,
				L1Hit:  l1Hit,
				L3Hit:  l3Hit,
			},
		})
	}

	return l1Hit || l3Hit
}

// L1 returns the first level.
func (h *Hierarchy) L1() *cache.Level {
	return h.l1
}

// L3 returns the last level.
func (h *Hierarchy) L3() *cache.Level {
	return h.l3
}

// Levels returns both levels, L1 first.
func (h *Hierarchy) Levels() []*cache.Level {
	return []*cache.Level{h.l1, h.l3}
}

// Stats returns a consistent snapshot of the counters of both levels, keyed
// by level name.
func (h *Hierarchy) Stats() map[string]cache.LevelStats {
	h.lock.Lock()
	defer h.lock.Unlock()

	return map[string]cache.LevelStats{
		h.l1.Name(): h.l1.Stats(),
		h.l3.Name(): h.l3.Stats(),
	}
}

// Reset invalidates both levels.
func (h *Hierarchy) Reset() {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.l1.Reset()
	h.l3.Reset()
}

// Inspect runs f while no access can be classified.
func (h *Hierarchy) Inspect(f func()) {
	h.lock.Lock()
	defer h.lock.Unlock()

	f()
}
