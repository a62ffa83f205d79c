// Package tracing provides hooks that observe the accesses classified by a
// cache hierarchy.
package tracing

import (
	"math/rand"
	"strconv"
	"sync"

	"github.com/rs/xid"

	"github.com/sarchlab/pagetrace/datarecording"
	"github.com/sarchlab/pagetrace/mem/cache"
	"github.com/sarchlab/pagetrace/mem/cache/hierarchy"
	"github.com/sarchlab/pagetrace/sim/hooking"
)

// SampleTable is the table that the sampled accesses are recorded into.
const SampleTable = "access_samples"

const (
	sampleBatchSize  = 4096
	sampleQueueDepth = 64
)

// Address and IP are hexadecimal strings since sqlite integers are signed.
type accessSampleEntry struct {
	ID       string
	ThreadID uint32
	IP       string
	Address  string
	Kind     string
	L1       string
	L3       string
}

// SampledAccessTracer records a random fraction of the accesses.
//
// The hook only buffers the samples. Full batches are written into the
// recorder by a background goroutine, so the hierarchy lock is never held
// during a database write.
type SampledAccessTracer struct {
	lock     sync.Mutex
	rate     float64
	rng      *rand.Rand
	recorder datarecording.DataRecorder
	sampled  uint64
	pending  []accessSampleEntry

	batches   chan []accessSampleEntry
	done      chan struct{}
	closeOnce sync.Once
}

// NewSampledAccessTracer creates a tracer that records each access with
// probability rate. The seed makes the selection reproducible.
func NewSampledAccessTracer(
	recorder datarecording.DataRecorder,
	rate float64,
	seed int64,
) *SampledAccessTracer {
	if rate < 0 || rate > 1 {
		panic("sample rate must be in [0, 1]")
	}

	recorder.CreateTable(SampleTable, accessSampleEntry{})

	t := &SampledAccessTracer{
		rate:     rate,
		rng:      rand.New(rand.NewSource(seed)),
		recorder: recorder,
		batches:  make(chan []accessSampleEntry, sampleQueueDepth),
		done:     make(chan struct{}),
	}

	go t.write()

	return t
}

// Func buffers the access if it is selected.
func (t *SampledAccessTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != hierarchy.HookPosAccess {
		return
	}

	outcome, ok := ctx.Item.(hierarchy.AccessOutcome)
	if !ok {
		return
	}

	batch := t.sample(outcome)
	if batch != nil {
		t.batches <- batch
	}
}

// sample returns a full batch when the access completes one.
func (t *SampledAccessTracer) sample(
	outcome hierarchy.AccessOutcome,
) []accessSampleEntry {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.selected() {
		return nil
	}

	t.sampled++
	t.pending = append(t.pending, accessSampleEntry{
		ID:       xid.New().String(),
		ThreadID: outcome.ThreadID,
		IP:       hexString(outcome.IP),
		Address:  hexString(outcome.Address),
		Kind:     kindLetter(outcome.Type),
		L1:       hitLetter(outcome.L1Hit),
		L3:       hitLetter(outcome.L3Hit),
	})

	if len(t.pending) < sampleBatchSize {
		return nil
	}

	batch := t.pending
	t.pending = make([]accessSampleEntry, 0, sampleBatchSize)

	return batch
}

func (t *SampledAccessTracer) selected() bool {
	if t.rate == 0 {
		return false
	}

	return t.rate >= 1 || t.rng.Float64() < t.rate
}

func (t *SampledAccessTracer) write() {
	defer close(t.done)

	for batch := range t.batches {
		for _, e := range batch {
			t.recorder.InsertData(SampleTable, e)
		}
	}
}

// Close writes the buffered samples and flushes the recorder. The tracer
// must not receive accesses after Close.
func (t *SampledAccessTracer) Close() {
	t.closeOnce.Do(func() {
		t.lock.Lock()
		batch := t.pending
		t.pending = nil
		t.lock.Unlock()

		if len(batch) > 0 {
			t.batches <- batch
		}

		close(t.batches)
		<-t.done

		t.recorder.Flush()
	})
}

// NumSampled returns how many accesses have been selected.
func (t *SampledAccessTracer) NumSampled() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.sampled
}

func hexString(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}

func kindLetter(t cache.AccessType) string {
	if t == cache.AccessTypeStore {
		return "W"
	}

	return "R"
}

func hitLetter(hit bool) string {
	if hit {
		return "H"
	}

	return "M"
}
