package instrumentation

import (
	"github.com/sarchlab/pagetrace/report"
)

// A Sink receives the encoded report when the program exits.
type Sink interface {
	Write(doc []byte) error
}

// FileSink writes the report into a file.
type FileSink struct {
	Path string
}

// Write replaces the file content with the report.
func (s FileSink) Write(doc []byte) error {
	return report.WriteEncoded(s.Path, doc)
}
