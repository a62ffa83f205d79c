package replay

import (
	"context"
	"sync"
)

// Host receives the events of a replayed program.
type Host interface {
	OnThreadStart(threadID uint32)
	OnThreadEnd(threadID uint32)
	OnMemoryAccess(threadID uint32, ip, addr uint64, isWrite bool)
}

// Progress tracks how many accesses have been replayed.
type Progress interface {
	IncrementInProgress(amount uint64)
	MoveInProgressToFinished(amount uint64)
}

const threadQueueSize = 1024

type threadWorker struct {
	threadID uint32
	queue    chan Event
	done     chan struct{}
}

type runner struct {
	ctx      context.Context
	host     Host
	progress Progress
	wg       sync.WaitGroup
	running  map[uint32]*threadWorker
}

// Run replays the events. Threads are started in trace order, and each thread
// replays its own accesses in order on its own goroutine. An end event waits
// until the thread has replayed everything before it. Threads still running
// at the end of the trace are ended when Run returns.
//
// Accesses of threads that are not running are issued directly. The host
// treats them as it treats any access of a thread it does not know about.
//
// Run does not tell the host that the program has exited. Progress may be nil.
func Run(
	ctx context.Context,
	host Host,
	events []Event,
	progress Progress,
) error {
	r := &runner{
		ctx:      ctx,
		host:     host,
		progress: progress,
		running:  make(map[uint32]*threadWorker),
	}

	if progress != nil {
		progress.IncrementInProgress(countAccesses(events))
	}

	r.dispatchAll(events)
	r.endAll()

	return ctx.Err()
}

func countAccesses(events []Event) uint64 {
	n := uint64(0)

	for _, e := range events {
		if e.Kind.IsAccess() {
			n++
		}
	}

	return n
}

func (r *runner) dispatchAll(events []Event) {
	for _, e := range events {
		if r.ctx.Err() != nil {
			return
		}

		switch e.Kind {
		case EventThreadStart:
			r.start(e.ThreadID)
		case EventThreadEnd:
			r.end(e.ThreadID)
		default:
			if !r.dispatch(e) {
				return
			}
		}
	}
}

func (r *runner) start(threadID uint32) {
	if _, ok := r.running[threadID]; ok {
		r.end(threadID)
	}

	r.host.OnThreadStart(threadID)

	w := &threadWorker{
		threadID: threadID,
		queue:    make(chan Event, threadQueueSize),
		done:     make(chan struct{}),
	}
	r.running[threadID] = w

	r.wg.Add(1)
	go r.work(w)
}

func (r *runner) work(w *threadWorker) {
	defer r.wg.Done()
	defer close(w.done)

	for e := range w.queue {
		if r.ctx.Err() != nil {
			continue
		}

		r.access(e)
	}
}

func (r *runner) access(e Event) {
	r.host.OnMemoryAccess(e.ThreadID, e.IP, e.Address, e.Kind == EventWrite)

	if r.progress != nil {
		r.progress.MoveInProgressToFinished(1)
	}
}

func (r *runner) dispatch(e Event) bool {
	w, ok := r.running[e.ThreadID]
	if !ok {
		r.access(e)
		return true
	}

	select {
	case w.queue <- e:
		return true
	case <-r.ctx.Done():
		return false
	}
}

func (r *runner) end(threadID uint32) {
	w, ok := r.running[threadID]
	if !ok {
		r.host.OnThreadEnd(threadID)
		return
	}

	close(w.queue)
	<-w.done

	delete(r.running, threadID)
	r.host.OnThreadEnd(threadID)
}

func (r *runner) endAll() {
	for _, w := range r.running {
		close(w.queue)
	}

	r.wg.Wait()

	for threadID := range r.running {
		r.host.OnThreadEnd(threadID)
	}

	r.running = make(map[uint32]*threadWorker)
}
