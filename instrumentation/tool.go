// Package instrumentation connects a program observer to the cache
// hierarchy and the per-thread page accounting.
//
// The host calls OnThreadStart before a thread issues any access,
// OnMemoryAccess for every memory operand, and OnProgramExit once all
// threads are done.
package instrumentation

import (
	"bytes"
	"log"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/pagetrace/accounting"
	"github.com/sarchlab/pagetrace/mem/cache"
	"github.com/sarchlab/pagetrace/mem/cache/hierarchy"
	"github.com/sarchlab/pagetrace/report"
)

// Tool classifies the accesses of a program and accounts them per page.
type Tool struct {
	hierarchy *hierarchy.Hierarchy
	registry  *accounting.Registry
	sink      Sink
	perThread bool
	verbose   bool

	orphans atomic.Uint64

	finalizeOnce sync.Once
	report       *report.Report
	doc          []byte
	finalizeErr  error

	fatalf func(format string, args ...any)
}

// Hierarchy returns the caches that the tool probes.
func (t *Tool) Hierarchy() *hierarchy.Hierarchy {
	return t.hierarchy
}

// Registry returns the per-thread counters.
func (t *Tool) Registry() *accounting.Registry {
	return t.registry
}

// OnThreadStart allocates the counters of a new thread.
func (t *Tool) OnThreadStart(threadID uint32) {
	t.registry.CreateForThread(threadID)

	if t.verbose {
		log.Printf("thread %d started", threadID)
	}
}

// OnThreadEnd is called when a thread finishes. Its counters are kept for the
// report, but later accesses with the same ID are orphans until the ID is
// started again.
func (t *Tool) OnThreadEnd(threadID uint32) {
	t.registry.Release(threadID)

	if t.verbose {
		log.Printf("thread %d ended", threadID)
	}
}

// OnMemoryAccess classifies one memory operand and records it against the
// page it touches.
func (t *Tool) OnMemoryAccess(threadID uint32, ip, addr uint64, isWrite bool) {
	accessType := cache.AccessTypeLoad
	if isWrite {
		accessType = cache.AccessTypeStore
	}

	hit := t.hierarchy.ClassifyAccess(hierarchy.Access{
		ThreadID: threadID,
		IP:       ip,
		Address:  addr,
		Type:     accessType,
	})

	counters, ok := t.registry.Lookup(threadID)
	if !ok {
		t.orphans.Add(1)
		return
	}

	counters.Record(addr, isWrite, hit)
}

// RecordAccess is OnMemoryAccess without an instruction address.
func (t *Tool) RecordAccess(threadID uint32, addr uint64, isWrite bool) {
	t.OnMemoryAccess(threadID, 0, addr, isWrite)
}

// NumThreads returns the number of threads that have started.
func (t *Tool) NumThreads() int {
	return t.registry.Len()
}

// OrphanAccesses returns the number of accesses issued by threads that are
// not running. They probe the caches but are not in the report.
func (t *Tool) OrphanAccesses() uint64 {
	return t.orphans.Load()
}

// Finalize builds and encodes the report. Only the first call builds it; the
// later calls return the same document.
func (t *Tool) Finalize() ([]byte, error) {
	t.finalizeOnce.Do(func() {
		var opts []report.Option
		if t.perThread {
			opts = append(opts, report.WithPerThread())
		}

		t.report = report.Build(t.registry.All(), opts...)

		buf := new(bytes.Buffer)
		t.finalizeErr = report.Encode(buf, t.report)
		t.doc = buf.Bytes()
	})

	return t.doc, t.finalizeErr
}

// Report returns the report built by Finalize, or nil if the tool is not
// finalized yet.
func (t *Tool) Report() *report.Report {
	return t.report
}

// OnProgramExit writes the report into the sink. A report that cannot be
// written terminates the program.
func (t *Tool) OnProgramExit(exitCode int) {
	if t.verbose {
		log.Printf("program exited with code %d", exitCode)
	}

	doc, err := t.Finalize()
	if err != nil {
		t.fatalf("pagetrace: cannot encode report: %v", err)
		return
	}

	err = t.sink.Write(doc)
	if err != nil {
		t.fatalf("pagetrace: %v", err)
	}
}
