package cmd

import (
	"os"

	"memoryvault/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "memoryvault",
	Short: "Private memories timeline with magic-link sign-in",
	Long: `memoryvault serves a single-tenant, invite-only site: a timeline of memories,
reasons revealed one by one, a countdown to the next event and an owner-only admin panel.

Configuration comes from environment variables; the flags below override them.
Run "memoryvault env" for the full list.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables memoryvault reads",
	Run: func(cmd *cobra.Command, args []string) {
		config.PrintEnvHelp(cmd.OutOrStdout())
	},
}

func init() {
	config.Settings.BindFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(envCmd)
}
