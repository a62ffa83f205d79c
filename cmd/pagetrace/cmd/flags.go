package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

func mustGetString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	dieOnErr(err)

	return v
}

func mustGetInt(cmd *cobra.Command, name string) int {
	v, err := cmd.Flags().GetInt(name)
	dieOnErr(err)

	return v
}

func mustGetInt64(cmd *cobra.Command, name string) int64 {
	v, err := cmd.Flags().GetInt64(name)
	dieOnErr(err)

	return v
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	dieOnErr(err)

	return v
}

func mustGetFloat64(cmd *cobra.Command, name string) float64 {
	v, err := cmd.Flags().GetFloat64(name)
	dieOnErr(err)

	return v
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
