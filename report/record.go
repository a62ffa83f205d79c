package report

import (
	"github.com/sarchlab/pagetrace/datarecording"
)

// PageCountEntry is a row of the page_counts table.
type PageCountEntry struct {
	Kind  string
	Page  uint64
	Count uint64
}

// ThreadPageCountEntry is a row of the thread_page_counts table.
type ThreadPageCountEntry struct {
	Thread int
	Group  string
	Kind   string
	Page   uint64
	Count  uint64
}

// Record stores the report into the page_counts table, and the per-thread
// counters, if any, into the thread_page_counts table.
func Record(recorder datarecording.DataRecorder, r *Report) {
	recorder.CreateTable("page_counts", PageCountEntry{})

	kinds := []struct {
		name   string
		counts PageCounts
	}{
		{"read_with_cache", r.ReadWithCache},
		{"read_without_cache", r.ReadWithoutCache},
		{"write_with_cache", r.WriteWithCache},
		{"write_without_cache", r.WriteWithoutCache},
	}

	for _, k := range kinds {
		for _, page := range k.counts.Pages() {
			recorder.InsertData("page_counts", PageCountEntry{
				Kind:  k.name,
				Page:  page,
				Count: k.counts[page],
			})
		}
	}

	if len(r.Cache) > 0 || len(r.NoCache) > 0 {
		recorder.CreateTable("thread_page_counts", ThreadPageCountEntry{})
		recordThreads(recorder, "cache", r.Cache)
		recordThreads(recorder, "no_cache", r.NoCache)
	}

	recorder.Flush()
}

func recordThreads(
	recorder datarecording.DataRecorder,
	group string,
	threads []ThreadPages,
) {
	for i, t := range threads {
		for _, page := range t.Reads.Pages() {
			recorder.InsertData("thread_page_counts", ThreadPageCountEntry{
				Thread: i,
				Group:  group,
				Kind:   "reads",
				Page:   page,
				Count:  t.Reads[page],
			})
		}

		for _, page := range t.Writes.Pages() {
			recorder.InsertData("thread_page_counts", ThreadPageCountEntry{
				Thread: i,
				Group:  group,
				Kind:   "writes",
				Page:   page,
				Count:  t.Writes[page],
			})
		}
	}
}
