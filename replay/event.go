// Package replay feeds a recorded memory trace into the instrumentation
// tool, one goroutine per traced thread.
package replay

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// EventKind tells what happened in the traced program.
type EventKind int

// All the event kinds of a trace.
const (
	EventThreadStart EventKind = iota
	EventThreadEnd
	EventRead
	EventWrite
)

func (k EventKind) String() string {
	switch k {
	case EventThreadStart:
		return "start"
	case EventThreadEnd:
		return "end"
	case EventRead:
		return "R"
	case EventWrite:
		return "W"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// IsAccess tells if the event is a memory access.
func (k EventKind) IsAccess() bool {
	return k == EventRead || k == EventWrite
}

// Event is one line of a trace.
type Event struct {
	Kind     EventKind
	ThreadID uint32
	Address  uint64
	IP       uint64
}

// Parse reads a trace. Each line is one of
//
//	start <tid>
//	end <tid>
//	R <tid> <addr> [ip]
//	W <tid> <addr> [ip]
//
// Addresses take a 0x prefix for hexadecimal. Blank lines and everything
// after a # are ignored.
func Parse(r io.Reader) ([]Event, error) {
	var events []Event

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		e, err := parseEvent(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		events = append(events, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
	}

	return events, nil
}

func parseEvent(fields []string) (Event, error) {
	var e Event

	switch fields[0] {
	case "start":
		e.Kind = EventThreadStart
	case "end":
		e.Kind = EventThreadEnd
	case "R", "r":
		e.Kind = EventRead
	case "W", "w":
		e.Kind = EventWrite
	default:
		return e, fmt.Errorf("unknown event %q", fields[0])
	}

	minFields, maxFields := 2, 2
	if e.Kind.IsAccess() {
		minFields, maxFields = 3, 4
	}

	if len(fields) < minFields || len(fields) > maxFields {
		return e, fmt.Errorf("%s takes %d to %d fields, got %d",
			e.Kind, minFields, maxFields, len(fields))
	}

	tid, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return e, fmt.Errorf("invalid thread id %q", fields[1])
	}

	e.ThreadID = uint32(tid)

	if !e.Kind.IsAccess() {
		return e, nil
	}

	e.Address, err = parseAddress(fields[2])
	if err != nil {
		return e, err
	}

	if len(fields) == 4 {
		e.IP, err = parseAddress(fields[3])
		if err != nil {
			return e, err
		}
	}

	return e, nil
}

func parseAddress(s string) (uint64, error) {
	base := 10
	digits := s

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}

	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}

	return v, nil
}

// Load parses the trace stored in a file.
func Load(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	events, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return events, nil
}
