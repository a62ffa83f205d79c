package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/pagetrace/config"
	"github.com/sarchlab/pagetrace/datarecording"
	"github.com/sarchlab/pagetrace/instrumentation"
	"github.com/sarchlab/pagetrace/mem"
	"github.com/sarchlab/pagetrace/mem/cache"
	"github.com/sarchlab/pagetrace/mem/cache/hierarchy"
	"github.com/sarchlab/pagetrace/monitoring"
	"github.com/sarchlab/pagetrace/replay"
	"github.com/sarchlab/pagetrace/report"
	"github.com/sarchlab/pagetrace/tracing"
)

var replayCmd = &cobra.Command{
	Use:   "replay <trace>",
	Short: "Replay a memory trace and write the page report.",
	Long: "`replay <trace>` feeds the accesses of a trace file through the " +
		"caches and writes the report to " + config.EnvOutputPath + ".",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true

		c, err := loadReplayConfig(cmd)
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		events, err := replay.Load(args[0])
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		opts := replayOptions{
			seed:        mustGetInt64(cmd, "seed"),
			verbose:     mustGetBool(cmd, "verbose"),
			monitor:     mustGetBool(cmd, "monitor"),
			openBrowser: mustGetBool(cmd, "open-browser"),
			accessLog:   mustGetString(cmd, "access-log"),
		}

		err = runReplay(ctx, c, events, opts, cmd.ErrOrStderr())
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}
	},
}

func init() {
	addReplayFlags(replayCmd)
	rootCmd.AddCommand(replayCmd)
}

func addReplayFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("env-file", "", "read the settings from this file instead of "+
		config.DefaultEnvFile)
	f.StringP("output", "o", "", "report file, overrides "+config.EnvOutputPath)
	f.String("l1-size", "", "L1 capacity, such as 64K")
	f.Int("l1-line-size", 0, "L1 line size in bytes")
	f.String("l3-size", "", "L3 capacity, such as 8M")
	f.Int("l3-line-size", 0, "L3 line size in bytes")
	f.Int("l3-ways", 0, "L3 associativity")
	f.String("l3-policy", "", "L3 replacement policy, roundRobin or lru")
	f.Bool("per-thread", false, "keep the pages of each thread apart")
	f.Float64("sample-rate", 0, "fraction of the accesses to record")
	f.String("sample-db", "", "database of the sampled accesses")
	f.Int64("seed", 0, "seed of the access sampling")
	f.Bool("monitor", false, "serve the replay state over HTTP")
	f.Int("monitor-port", 0, "port of the monitoring server")
	f.Bool("open-browser", false, "open the monitor in a web browser")
	f.String("access-log", "", "write every access and its outcome into "+
		"this file")
	f.BoolP("verbose", "v", false, "log thread events")
}

// loadReplayConfig reads the environment and applies the flags that are set
// on top of it.
func loadReplayConfig(cmd *cobra.Command) (config.Config, error) {
	var envFiles []string
	if envFile := mustGetString(cmd, "env-file"); envFile != "" {
		envFiles = append(envFiles, envFile)
	}

	c, err := config.Load(envFiles...)
	if err != nil {
		return c, err
	}

	err = applyFlags(cmd, &c)
	if err != nil {
		return c, err
	}

	return c, c.Validate()
}

func applyFlags(cmd *cobra.Command, c *config.Config) error {
	f := cmd.Flags()

	if f.Changed("output") {
		c.OutputPath = mustGetString(cmd, "output")
	}

	sizes := map[string]*uint64{
		"l1-size": &c.Cache.L1Size,
		"l3-size": &c.Cache.L3Size,
	}
	for name, dst := range sizes {
		if !f.Changed(name) {
			continue
		}

		size, err := mem.ParseByteSize(mustGetString(cmd, name))
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}

		*dst = size
	}

	ints := map[string]*int{
		"l1-line-size": &c.Cache.L1LineSize,
		"l3-line-size": &c.Cache.L3LineSize,
		"l3-ways":      &c.Cache.L3Ways,
		"monitor-port": &c.MonitorPort,
	}
	for name, dst := range ints {
		if f.Changed(name) {
			*dst = mustGetInt(cmd, name)
		}
	}

	if f.Changed("l3-policy") {
		c.Cache.L3Policy = cache.ReplacePolicy(mustGetString(cmd, "l3-policy"))
	}

	if f.Changed("per-thread") {
		c.PerThread = mustGetBool(cmd, "per-thread")
	}

	if f.Changed("sample-rate") {
		c.SampleRate = mustGetFloat64(cmd, "sample-rate")
	}

	if f.Changed("sample-db") {
		c.SampleDB = mustGetString(cmd, "sample-db")
	}

	return nil
}

type replayOptions struct {
	seed        int64
	verbose     bool
	monitor     bool
	openBrowser bool
	accessLog   string
}

func runReplay(
	ctx context.Context,
	c config.Config,
	events []replay.Event,
	opts replayOptions,
	out io.Writer,
) error {
	h := hierarchy.MakeBuilder().WithConfig(c.Cache).Build("Cache")
	counter := tracing.NewAccessCounter()

	builder := instrumentation.MakeBuilder().
		WithHierarchy(h).
		WithSink(instrumentation.FileSink{Path: c.OutputPath}).
		WithPerThread(c.PerThread).
		WithVerbose(opts.verbose).
		WithAccessHook(counter)

	if opts.accessLog != "" {
		f, err := os.Create(opts.accessLog)
		if err != nil {
			return err
		}

		w := bufio.NewWriter(f)
		defer func() {
			w.Flush()
			f.Close()
		}()

		logger := log.New(w, "", 0)
		builder = builder.WithAccessHook(tracing.NewLogTracer(logger))
	}

	var (
		recorder datarecording.DataRecorder
		tracer   *tracing.SampledAccessTracer
	)
	if c.SampleRate > 0 {
		recorder = datarecording.New(c.SampleDB)
		defer recorder.Close()

		tracer = tracing.NewSampledAccessTracer(recorder, c.SampleRate, opts.seed)
		defer tracer.Close()

		builder = builder.WithAccessHook(tracer)
	}

	tool := builder.Build()

	var progress replay.Progress
	if opts.monitor || c.MonitorPort != 0 {
		monitor := monitoring.NewMonitor().
			WithPortNumber(c.MonitorPort).
			WithBrowser(opts.openBrowser)
		monitor.RegisterHierarchy(h)
		monitor.RegisterThreadSource(tool)
		monitor.RegisterAccessCounter(counter)
		monitor.StartServer()

		bar := monitor.CreateProgressBar("Replay", countAccesses(events))
		defer monitor.CompleteProgressBar(bar)

		progress = bar
	}

	err := replay.Run(ctx, tool, events, progress)
	if err != nil {
		return err
	}

	tool.OnProgramExit(0)

	if recorder != nil {
		tracer.Close()
		report.Record(recorder, tool.Report())
	}

	printRunSummary(out, tool, counter)

	return nil
}

func countAccesses(events []replay.Event) uint64 {
	n := uint64(0)

	for _, e := range events {
		if e.Kind.IsAccess() {
			n++
		}
	}

	return n
}

func printRunSummary(
	out io.Writer,
	tool *instrumentation.Tool,
	counter *tracing.AccessCounter,
) {
	counts := counter.Counts()

	fmt.Fprintf(out, "threads: %d\n", tool.NumThreads())
	fmt.Fprintf(out, "accesses: %d reads, %d writes\n",
		counts.Reads, counts.Writes)
	fmt.Fprintf(out, "missed both levels: %d\n", counts.BothMissed)

	for _, l := range tool.Hierarchy().Levels() {
		s := l.Stats()
		fmt.Fprintf(out, "%s: %d hits, %d misses, %d evictions\n",
			l.Name(), s.Hits, s.Misses, s.Evictions)
	}

	if n := tool.OrphanAccesses(); n > 0 {
		fmt.Fprintf(out, "accesses of unknown threads: %d\n", n)
	}
}
