// Package cmd provides the command-line interface for pagetrace.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pagetrace",
	Short: "pagetrace counts the memory accesses of a program per page.",
	Long: `pagetrace replays the memory accesses of a program through a ` +
		`direct-mapped L1 and a 16-way L3 data cache and counts, per 4KiB ` +
		`page, the accesses that miss both levels. It can also summarize ` +
		`and compare the reports it writes.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
