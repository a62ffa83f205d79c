package report_test

import (
	. "github.com/onsi/ginkgo/v2"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/pagetrace/report"
)

var _ = Describe("Record", func() {
	var (
		mockCtrl *gomock.Controller
		recorder *MockDataRecorder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockDataRecorder(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record the merged counters", func() {
		r := &report.Report{
			ReadWithCache:     report.PageCounts{1: 1},
			ReadWithoutCache:  report.PageCounts{1: 2, 3: 1},
			WriteWithCache:    report.PageCounts{},
			WriteWithoutCache: report.PageCounts{4: 5},
		}

		recorder.EXPECT().CreateTable("page_counts", report.PageCountEntry{})
		gomock.InOrder(
			recorder.EXPECT().InsertData("page_counts",
				report.PageCountEntry{Kind: "read_with_cache", Page: 1, Count: 1}),
			recorder.EXPECT().InsertData("page_counts",
				report.PageCountEntry{Kind: "read_without_cache", Page: 1, Count: 2}),
			recorder.EXPECT().InsertData("page_counts",
				report.PageCountEntry{Kind: "read_without_cache", Page: 3, Count: 1}),
			recorder.EXPECT().InsertData("page_counts",
				report.PageCountEntry{Kind: "write_without_cache", Page: 4, Count: 5}),
			recorder.EXPECT().Flush(),
		)

		report.Record(recorder, r)
	})

	It("should record per-thread counters", func() {
		r := &report.Report{
			Cache:   []report.ThreadPages{{Reads: report.PageCounts{1: 1}}},
			NoCache: []report.ThreadPages{{Writes: report.PageCounts{2: 3}}},
		}

		recorder.EXPECT().CreateTable("page_counts", report.PageCountEntry{})
		recorder.EXPECT().
			CreateTable("thread_page_counts", report.ThreadPageCountEntry{})
		recorder.EXPECT().InsertData("thread_page_counts", report.ThreadPageCountEntry{
			Thread: 0, Group: "cache", Kind: "reads", Page: 1, Count: 1,
		})
		recorder.EXPECT().InsertData("thread_page_counts", report.ThreadPageCountEntry{
			Thread: 0, Group: "no_cache", Kind: "writes", Page: 2, Count: 3,
		})
		recorder.EXPECT().Flush()

		report.Record(recorder, r)
	})
})
