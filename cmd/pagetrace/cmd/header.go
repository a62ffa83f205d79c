package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/pagetrace/report"
)

var headerCmd = &cobra.Command{
	Use:   "header <report>",
	Short: "Attach a header to a report.",
	Long: "`header <report> --set key=value` wraps the report as " +
		"{\"header\": ..., \"data\": ...}, or replaces the header of a " +
		"report that already has one.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true

		pairs, err := cmd.Flags().GetStringArray("set")
		dieOnErr(err)

		header, err := parseHeader(pairs)
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}

		err = report.WrapWithHeader(args[0], header)
		if err != nil {
			atexit.Fatalf("Error: %v", err)
		}
	},
}

func init() {
	headerCmd.Flags().StringArray("set", nil, "header entry as key=value")

	rootCmd.AddCommand(headerCmd)
}

// parseHeader turns key=value pairs into a header. Values that read as
// numbers or booleans are stored as such.
func parseHeader(pairs []string) (map[string]any, error) {
	header := make(map[string]any, len(pairs))

	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("header entry %q is not key=value", p)
		}

		header[key] = parseHeaderValue(value)
	}

	return header, nil
}

func parseHeaderValue(value string) any {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return value
}
