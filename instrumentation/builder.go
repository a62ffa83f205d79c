package instrumentation

import (
	"github.com/sarchlab/pagetrace/accounting"
	"github.com/sarchlab/pagetrace/mem/cache/hierarchy"
	"github.com/sarchlab/pagetrace/sim/hooking"
	"github.com/tebeka/atexit"
)

// Builder can build tools.
type Builder struct {
	hierarchy *hierarchy.Hierarchy
	registry  *accounting.Registry
	sink      Sink
	perThread bool
	verbose   bool
	hooks     []hooking.Hook
	fatalf    func(format string, args ...any)
}

// MakeBuilder creates a builder. Without a hierarchy or a registry, Build
// creates the default ones. A sink must be given.
func MakeBuilder() Builder {
	return Builder{
		fatalf: atexit.Fatalf,
	}
}

// WithHierarchy sets the caches that the tool probes.
func (b Builder) WithHierarchy(h *hierarchy.Hierarchy) Builder {
	b.hierarchy = h
	return b
}

// WithRegistry sets the registry that holds the per-thread counters.
func (b Builder) WithRegistry(r *accounting.Registry) Builder {
	b.registry = r
	return b
}

// WithSink sets where the report is written at program exit.
func (b Builder) WithSink(s Sink) Builder {
	b.sink = s
	return b
}

// WithPerThread makes the report keep each thread's pages apart.
func (b Builder) WithPerThread(perThread bool) Builder {
	b.perThread = perThread
	return b
}

// WithVerbose logs the thread and program events.
func (b Builder) WithVerbose(verbose bool) Builder {
	b.verbose = verbose
	return b
}

// WithAccessHook registers a hook that observes every classified access.
func (b Builder) WithAccessHook(hook hooking.Hook) Builder {
	b.hooks = append(b.hooks, hook)
	return b
}

// WithFatalFunc replaces the function that terminates the program when the
// report cannot be written.
func (b Builder) WithFatalFunc(f func(format string, args ...any)) Builder {
	b.fatalf = f
	return b
}

// Build creates the tool.
func (b Builder) Build() *Tool {
	if b.sink == nil {
		panic("instrumentation: sink is not set")
	}

	h := b.hierarchy
	if h == nil {
		h = hierarchy.MakeBuilder().Build("Cache")
	}

	registry := b.registry
	if registry == nil {
		registry = accounting.NewRegistry()
	}

	for _, hook := range b.hooks {
		h.AcceptHook(hook)
	}

	return &Tool{
		hierarchy: h,
		registry:  registry,
		sink:      b.sink,
		perThread: b.perThread,
		verbose:   b.verbose,
		fatalf:    b.fatalf,
	}
}
