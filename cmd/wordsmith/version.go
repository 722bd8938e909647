package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var versionJSON bool

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print build information as JSON")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if versionJSON {
			return writeJSON(out, map[string]string{
				"version": version,
				"commit":  commit,
				"date":    date,
			}, isTerminal(os.Stdout))
		}
		fmt.Fprintf(out, "wordsmith %s\n", version)
		fmt.Fprintf(out, "Commit: %s\n", commit)
		fmt.Fprintf(out, "Built: %s\n", date)
		return nil
	},
}
