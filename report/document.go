package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrUnknownSchema is returned when a document has neither the merged nor
// the per-thread counters.
var ErrUnknownSchema = errors.New("report: unknown schema")

var flatKeys = []string{
	"read_with_cache",
	"read_without_cache",
	"write_with_cache",
	"write_without_cache",
}

var perThreadKeys = []string{"cache", "no_cache"}

// A Document is a report read back from disk, possibly with a header that
// describes the run.
type Document struct {
	Header    map[string]any
	Report    *Report
	perThread bool
	flat      bool
}

// Load reads a report file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}

// Decode reads a report. Both the plain report and the
// {"header": ..., "data": ...} wrapping are accepted.
func Decode(r io.Reader) (*Document, error) {
	raw := map[string]json.RawMessage{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	doc := &Document{}

	if data, wrapped := raw["data"]; wrapped {
		if header, ok := raw["header"]; ok {
			if err := json.Unmarshal(header, &doc.Header); err != nil {
				return nil, fmt.Errorf("header: %w", err)
			}
		}

		raw = map[string]json.RawMessage{}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
	}

	doc.flat = hasAllKeys(raw, flatKeys)
	doc.perThread = hasAllKeys(raw, perThreadKeys)

	if !doc.flat && !doc.perThread {
		return nil, ErrUnknownSchema
	}

	doc.Report = &Report{}
	if err := unmarshalFields(raw, doc.Report); err != nil {
		return nil, err
	}

	return doc, nil
}

func hasAllKeys(raw map[string]json.RawMessage, keys []string) bool {
	for _, k := range keys {
		if _, ok := raw[k]; !ok {
			return false
		}
	}

	return true
}

func unmarshalFields(raw map[string]json.RawMessage, r *Report) error {
	buf, err := json.Marshal(raw)
	if err != nil {
		return err
	}

	return json.Unmarshal(buf, r)
}

// IsPerThread tells if the document carries per-thread counters.
func (d *Document) IsPerThread() bool {
	return d.perThread
}

// AggregateReads sums the read counters. The per-thread counters are
// preferred when the document has them.
func (d *Document) AggregateReads(withCache bool) PageCounts {
	if d.perThread {
		return Merge(d.threadReads(withCache)...)
	}

	if withCache {
		return Merge(d.Report.ReadWithCache)
	}

	return Merge(d.Report.ReadWithoutCache)
}

// AggregateWrites sums the write counters. The per-thread counters are
// preferred when the document has them.
func (d *Document) AggregateWrites(withCache bool) PageCounts {
	if d.perThread {
		return Merge(d.threadWrites(withCache)...)
	}

	if withCache {
		return Merge(d.Report.WriteWithCache)
	}

	return Merge(d.Report.WriteWithoutCache)
}

// AggregateReadsWrites sums both the read and the write counters.
func (d *Document) AggregateReadsWrites(withCache bool) PageCounts {
	return Merge(d.AggregateReads(withCache), d.AggregateWrites(withCache))
}

func (d *Document) group(withCache bool) []ThreadPages {
	if withCache {
		return d.Report.Cache
	}

	return d.Report.NoCache
}

func (d *Document) threadReads(withCache bool) []PageCounts {
	group := d.group(withCache)
	counts := make([]PageCounts, 0, len(group))

	for _, t := range group {
		counts = append(counts, t.Reads)
	}

	return counts
}

func (d *Document) threadWrites(withCache bool) []PageCounts {
	group := d.group(withCache)
	counts := make([]PageCounts, 0, len(group))

	for _, t := range group {
		counts = append(counts, t.Writes)
	}

	return counts
}

// WrapWithHeader rewrites a report file as {"header": header, "data": ...}.
// If the file is already wrapped, only the header is replaced.
func WrapWithHeader(path string, header map[string]any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	raw := map[string]json.RawMessage{}
	if err = json.Unmarshal(content, &raw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	data := json.RawMessage(bytes.TrimSpace(content))
	if inner, wrapped := raw["data"]; wrapped {
		data = inner
	}

	wrapped, err := json.Marshal(struct {
		Header map[string]any  `json:"header"`
		Data   json.RawMessage `json:"data"`
	}{
		Header: header,
		Data:   data,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(path, wrapped, 0o644)
}
