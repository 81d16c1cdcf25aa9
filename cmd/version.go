package cmd

import (
	"fmt"

	"memoryvault/version"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.GetBuildInfo())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
