package replay

import (
	"context"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHost struct {
	lock     sync.Mutex
	log      []string
	accesses map[uint32][]uint64
}

func newRecordingHost() *recordingHost {
	return &recordingHost{accesses: make(map[uint32][]uint64)}
}

func (h *recordingHost) OnThreadStart(threadID uint32) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.log = append(h.log, fmt.Sprintf("start %d", threadID))
}

func (h *recordingHost) OnThreadEnd(threadID uint32) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.log = append(h.log, fmt.Sprintf(
		"end %d after %d", threadID, len(h.accesses[threadID])))
}

func (h *recordingHost) OnMemoryAccess(
	threadID uint32,
	ip, addr uint64,
	isWrite bool,
) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.accesses[threadID] = append(h.accesses[threadID], addr)
}

type countingProgress struct {
	lock       sync.Mutex
	inProgress uint64
	finished   uint64
}

func (p *countingProgress) IncrementInProgress(amount uint64) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.inProgress += amount
}

func (p *countingProgress) MoveInProgressToFinished(amount uint64) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.inProgress -= amount
	p.finished += amount
}

func threadEvents(threadID uint32, n int) []Event {
	events := []Event{{Kind: EventThreadStart, ThreadID: threadID}}

	for i := 0; i < n; i++ {
		events = append(events, Event{
			Kind:     EventRead,
			ThreadID: threadID,
			Address:  uint64(i),
		})
	}

	return events
}

var _ = Describe("Run", func() {
	var host *recordingHost

	BeforeEach(func() {
		host = newRecordingHost()
	})

	It("should replay each thread in order", func() {
		events := append(threadEvents(1, 3000), threadEvents(2, 3000)...)

		err := Run(context.Background(), host, events, nil)

		Expect(err).NotTo(HaveOccurred())
		for _, tid := range []uint32{1, 2} {
			Expect(host.accesses[tid]).To(HaveLen(3000))
			for i, addr := range host.accesses[tid] {
				Expect(addr).To(Equal(uint64(i)))
			}
		}
	})

	It("should end a thread after its accesses", func() {
		events := append(threadEvents(1, 10),
			Event{Kind: EventThreadEnd, ThreadID: 1})

		err := Run(context.Background(), host, events, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(host.log).To(Equal([]string{"start 1", "end 1 after 10"}))
	})

	It("should end threads left running", func() {
		err := Run(context.Background(), host, threadEvents(4, 5), nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(host.log).To(Equal([]string{"start 4", "end 4 after 5"}))
	})

	It("should issue accesses after the end of their thread", func() {
		events := append(threadEvents(1, 2),
			Event{Kind: EventThreadEnd, ThreadID: 1},
			Event{Kind: EventWrite, ThreadID: 1, Address: 0x40})

		err := Run(context.Background(), host, events, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(host.log).To(Equal([]string{"start 1", "end 1 after 2"}))
		Expect(host.accesses[1]).To(Equal([]uint64{0, 1, 0x40}))
	})

	It("should end a thread before its id is reused", func() {
		events := append(threadEvents(1, 2), threadEvents(1, 3)...)

		err := Run(context.Background(), host, events, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(host.log).To(Equal([]string{
			"start 1", "end 1 after 2", "start 1", "end 1 after 5",
		}))
	})

	It("should pass accesses of unknown threads", func() {
		events := []Event{{Kind: EventWrite, ThreadID: 7, Address: 64}}

		err := Run(context.Background(), host, events, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(host.accesses[7]).To(Equal([]uint64{64}))
		Expect(host.log).To(BeEmpty())
	})

	It("should track progress", func() {
		progress := &countingProgress{}
		events := append(threadEvents(1, 100), threadEvents(2, 50)...)

		err := Run(context.Background(), host, events, progress)

		Expect(err).NotTo(HaveOccurred())
		Expect(progress.finished).To(Equal(uint64(150)))
		Expect(progress.inProgress).To(BeZero())
	})

	It("should stop when cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Run(ctx, host, threadEvents(1, 100), nil)

		Expect(err).To(MatchError(context.Canceled))
		Expect(host.accesses[1]).To(BeEmpty())
	})
})
