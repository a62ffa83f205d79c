// Package report merges the page counters of all threads and reads and writes
// the resulting JSON document.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/pagetrace/accounting"
)

// ErrEmptyPath is returned when a report is written without a destination.
var ErrEmptyPath = errors.New("report: output path is empty")

// ThreadPages is the per-thread view of one group of counters.
type ThreadPages struct {
	Reads  PageCounts `json:"reads"`
	Writes PageCounts `json:"writes"`
}

// Report is the summary of a traced run.
type Report struct {
	ReadWithCache     PageCounts `json:"read_with_cache"`
	ReadWithoutCache  PageCounts `json:"read_without_cache"`
	WriteWithCache    PageCounts `json:"write_with_cache"`
	WriteWithoutCache PageCounts `json:"write_without_cache"`

	// Cache and NoCache are only filled when the report is built with
	// WithPerThread. Entry i of both slices belongs to the same thread.
	Cache   []ThreadPages `json:"cache,omitempty"`
	NoCache []ThreadPages `json:"no_cache,omitempty"`
}

// An Option changes how a report is built.
type Option func(*buildOptions)

type buildOptions struct {
	perThread bool
}

// WithPerThread keeps a copy of each thread's counters in the report, next
// to the merged ones.
func WithPerThread() Option {
	return func(o *buildOptions) {
		o.perThread = true
	}
}

// Build sums the counters of all the threads. The order of the counters does
// not change the merged maps.
func Build(counters []*accounting.PageCounters, opts ...Option) *Report {
	o := buildOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Report{
		ReadWithCache:     make(PageCounts),
		ReadWithoutCache:  make(PageCounts),
		WriteWithCache:    make(PageCounts),
		WriteWithoutCache: make(PageCounts),
	}

	for _, c := range counters {
		mergeInto(r.ReadWithCache, c.ReadWithCache)
		mergeInto(r.ReadWithoutCache, c.ReadWithoutCache)
		mergeInto(r.WriteWithCache, c.WriteWithCache)
		mergeInto(r.WriteWithoutCache, c.WriteWithoutCache)

		if o.perThread {
			r.Cache = append(r.Cache, ThreadPages{
				Reads:  Merge(c.ReadWithCache),
				Writes: Merge(c.WriteWithCache),
			})
			r.NoCache = append(r.NoCache, ThreadPages{
				Reads:  Merge(c.ReadWithoutCache),
				Writes: Merge(c.WriteWithoutCache),
			})
		}
	}

	return r
}

// Encode writes the report as JSON.
func Encode(w io.Writer, r *Report) error {
	return json.NewEncoder(w).Encode(r)
}

// WriteEncoded writes an encoded report into a file, replacing the file if it
// exists.
func WriteEncoded(path string, doc []byte) error {
	if path == "" {
		return ErrEmptyPath
	}

	err := os.WriteFile(path, doc, 0o644)
	if err != nil {
		return fmt.Errorf("report: cannot write %s: %w", path, err)
	}

	return nil
}
