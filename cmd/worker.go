package cmd

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"memoryvault/config"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run only the queued mail worker",
	Long:  "Delivers magic-link emails queued by servers started with REDIS_URL and --mail-worker=false.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Settings
		if cfg.RedisURL == "" || cfg.EmailServerHost == "" {
			return errors.New("REDIS_URL and EMAIL_SERVER_HOST are required")
		}

		logFile, err := setupLogging(cfg.LogFilePath)
		if err != nil {
			return err
		}
		if logFile != nil {
			defer logFile.Close()
		}

		stop, err := startMailWorker(cfg)
		if err != nil {
			return err
		}
		defer stop()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Mail worker shutting down...")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
