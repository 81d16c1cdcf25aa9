package cmd

import (
	"context"
	"fmt"

	"memoryvault/config"
	"memoryvault/database"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the owner identity and sample content",
	Long:  "Seeds default settings, the allowlisted owner and a few sample memories, reasons and an event. Does nothing if memories already exist.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := setupLogging(""); err != nil {
			return err
		}
		if err := database.InitDB(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.CloseDB()

		if err := database.SeedDevData(context.Background(), database.DB, config.Settings.AllowedEmail); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Seed complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
