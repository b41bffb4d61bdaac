package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Overwritten at build time with -ldflags "-X github.com/spigell/resume-matcher/cmd.version=...".
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the resume-matcher version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", app, version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
