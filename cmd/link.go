package cmd

import (
	"errors"
	"fmt"

	"memoryvault/auth"
	"memoryvault/config"
	"memoryvault/core"
	"memoryvault/database"

	"github.com/spf13/cobra"
)

var linkCallback string

var linkCmd = &cobra.Command{
	Use:   "link [email]",
	Short: "Print a sign-in link without sending email",
	Long:  "Issues a single-use magic link for the allowlisted address (ALLOWED_EMAIL by default) and prints it.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Settings
		email := cfg.AllowedEmail
		if len(args) == 1 {
			email = args[0]
		}
		if email == "" {
			return errors.New("no email given and ALLOWED_EMAIL is empty")
		}

		if err := database.InitDB(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.CloseDB()

		resolver := auth.NewResolver(auth.ResolverConfig{
			DB:        database.DB,
			Allowlist: auth.NewAllowlist(cfg.AllowedEmail),
			Tokens:    auth.NewTokenManager(cfg.AppSecret, cfg.SessionMaxAge, cfg.SessionUpdateAge),
			BaseURL:   cfg.BaseURL,
			LinkTTL:   cfg.MagicLinkMaxAge,
		})
		link, err := resolver.IssueLink(cmd.Context(), email, linkCallback)
		if errors.Is(err, core.ErrAccessDenied) {
			return fmt.Errorf("%s is not the allowlisted address", email)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}

func init() {
	linkCmd.Flags().StringVar(&linkCallback, "callback", "/", "Path to open after signing in")
	rootCmd.AddCommand(linkCmd)
}
