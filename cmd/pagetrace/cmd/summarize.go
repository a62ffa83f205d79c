package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/pagetrace/analysis"
	"github.com/sarchlab/pagetrace/report"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <report>",
	Short: "Print the page counts of a report.",
	Long: "`summarize <report>` prints, for reads, writes and both, how " +
		"many pages were touched, how the access counts are distributed, and " +
		"how much of the traffic the hottest pages take.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true

		doc, err := report.Load(args[0])
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		opts := summaryOptions{
			withCache:  mustGetBool(cmd, "with-cache"),
			bucketSize: uint64(mustGetInt(cmd, "bucket-size")),
			top:        mustGetInt(cmd, "top"),
			percentile: mustGetFloat64(cmd, "percentile"),
		}

		err = summarize(cmd.OutOrStdout(), doc, opts)
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		csvPath := mustGetString(cmd, "csv")
		if csvPath != "" {
			err = writeCSV(csvPath, doc)
			if err != nil {
				atexit.Fatalf("Error: %v", err)
			}
		}
	},
}

func init() {
	f := summarizeCmd.Flags()
	f.Bool("with-cache", false, "use the counts of the accesses that missed "+
		"both cache levels")
	f.Int("bucket-size", 1, "width of the count distribution buckets")
	f.Int("top", 10, "number of distribution buckets to print")
	f.Float64("percentile", 10, "share of the hottest pages to measure")
	f.String("csv", "", "also write the read and write counts per page "+
		"into this file")

	rootCmd.AddCommand(summarizeCmd)
}

type summaryOptions struct {
	withCache  bool
	bucketSize uint64
	top        int
	percentile float64
}

func summarize(w io.Writer, doc *report.Document, opts summaryOptions) error {
	groups := []struct {
		name   string
		counts report.PageCounts
	}{
		{"reads", doc.AggregateReads(opts.withCache)},
		{"writes", doc.AggregateWrites(opts.withCache)},
		{"reads+writes", doc.AggregateReadsWrites(opts.withCache)},
	}

	for _, g := range groups {
		err := summarizeGroup(w, g.name, g.counts, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", g.name, err)
		}
	}

	return nil
}

func summarizeGroup(
	w io.Writer,
	name string,
	counts report.PageCounts,
	opts summaryOptions,
) error {
	fmt.Fprintf(w, "%s: %d pages, %d accesses\n",
		name, len(counts), counts.Total())

	if len(counts) == 0 {
		return nil
	}

	dist, err := analysis.Distribution(counts.Counts(), opts.bucketSize)
	if err != nil {
		return err
	}

	buckets := analysis.MostCommon(dist)
	if opts.top > 0 && len(buckets) > opts.top {
		buckets = buckets[:opts.top]
	}

	for _, b := range buckets {
		low := b.Bucket * opts.bucketSize
		fmt.Fprintf(w, "  [%d, %d): %d pages\n",
			low, low+opts.bucketSize, b.Frequency)
	}

	hottest, err := analysis.PercentileSlice(
		analysis.SortDescending(counts.Counts()), opts.percentile)
	if err != nil {
		return err
	}

	hot := uint64(0)
	for _, c := range hottest {
		hot += c
	}

	fmt.Fprintf(w, "  hottest %v%% of pages (%d): %.2f%% of accesses\n",
		opts.percentile, len(hottest),
		100*float64(hot)/float64(counts.Total()))

	return nil
}

func writeCSV(path string, doc *report.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = analysis.WritePageCSV(f,
		doc.AggregateReadsWrites(true),
		doc.AggregateReadsWrites(false))
	if err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
