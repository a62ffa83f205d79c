package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/pagetrace/analysis"
	"github.com/sarchlab/pagetrace/report"
)

var compareCmd = &cobra.Command{
	Use:   "compare <report> <report>",
	Short: "Tell how similar the page counts of two reports are.",
	Long: "`compare <a> <b>` prints the cosine similarity of the read, " +
		"write and total page counts of two reports.",
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true

		a, err := report.Load(args[0])
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		b, err := report.Load(args[1])
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		compare(cmd.OutOrStdout(), a, b, mustGetBool(cmd, "with-cache"))
	},
}

func init() {
	compareCmd.Flags().Bool("with-cache", false,
		"use the counts of the accesses that missed both cache levels")

	rootCmd.AddCommand(compareCmd)
}

func compare(w io.Writer, a, b *report.Document, withCache bool) {
	pairs := []struct {
		name string
		a, b report.PageCounts
	}{
		{"reads", a.AggregateReads(withCache), b.AggregateReads(withCache)},
		{"writes", a.AggregateWrites(withCache), b.AggregateWrites(withCache)},
		{
			"reads+writes",
			a.AggregateReadsWrites(withCache),
			b.AggregateReadsWrites(withCache),
		},
	}

	for _, p := range pairs {
		va, vb := analysis.AlignPages(p.a, p.b)

		sim, err := analysis.CosineSimilarity(va, vb)
		if err != nil {
			fmt.Fprintf(w, "%s: %v\n", p.name, err)
			continue
		}

		fmt.Fprintf(w, "%s: %.6f\n", p.name, sim)
	}
}
