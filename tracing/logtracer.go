package tracing

import (
	"log"

	"github.com/sarchlab/pagetrace/mem/cache/hierarchy"
	"github.com/sarchlab/pagetrace/sim/hooking"
)

// A LogTracer writes one line per access, such as "R H M 0x7ffd1000", where
// the letters tell the kind of the access and whether L1 and L3 hit.
type LogTracer struct {
	*log.Logger
}

// NewLogTracer creates a tracer that writes into logger.
func NewLogTracer(logger *log.Logger) *LogTracer {
	return &LogTracer{Logger: logger}
}

// Func writes the access.
func (t *LogTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != hierarchy.HookPosAccess {
		return
	}

	outcome, ok := ctx.Item.(hierarchy.AccessOutcome)
	if !ok {
		return
	}

	t.Printf("%s %s %s 0x%x\n",
		kindLetter(outcome.Type),
		hitLetter(outcome.L1Hit),
		hitLetter(outcome.L3Hit),
		outcome.Address)
}
