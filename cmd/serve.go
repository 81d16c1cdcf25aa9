package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"memoryvault/auth"
	"memoryvault/config"
	"memoryvault/core"
	"memoryvault/database"
	"memoryvault/handlers"
	"memoryvault/mailer"
	"memoryvault/player"
	"memoryvault/service"
	"memoryvault/version"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveMailWorker bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMailWorker, "mail-worker", true, "Run the queued mail worker in-process when REDIS_URL is set")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Settings
	if err := cfg.Validate(); err != nil {
		return err
	}

	logFile, err := setupLogging(cfg.LogFilePath)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	log.Printf("MemoryVault %s starting up...", version.GetFullVersion())
	if cfg.UsingDevSecret() {
		log.Println("Warning: APP_SECRET is not set, using the development secret (dev mode)")
	}
	if cfg.AllowedEmail == "" {
		log.Println("Warning: ALLOWED_EMAIL is empty, nobody will be able to sign in")
	}

	if err := database.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	if err := database.EnsureDefaultSettings(context.Background(), database.DB); err != nil {
		return fmt.Errorf("failed to seed default settings: %w", err)
	}

	services := service.InitServices(database.DB)

	sender, closeSender, err := mailer.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to configure mail: %w", err)
	}
	defer closeSender()

	if cfg.RedisURL != "" && cfg.EmailServerHost != "" && serveMailWorker {
		stopWorker, err := startMailWorker(cfg)
		if err != nil {
			return err
		}
		defer stopWorker()
	}

	tokens := auth.NewTokenManager(cfg.AppSecret, cfg.SessionMaxAge, cfg.SessionUpdateAge)
	resolver := auth.NewResolver(auth.ResolverConfig{
		DB:        database.DB,
		Allowlist: auth.NewAllowlist(cfg.AllowedEmail),
		Sender:    sender,
		Tokens:    tokens,
		BaseURL:   cfg.BaseURL,
		LinkTTL:   cfg.MagicLinkMaxAge,
	})

	music, spotify, err := musicSource(cfg)
	if err != nil {
		return err
	}

	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()
	gin.DisableConsoleColor()

	h := handlers.New(handlers.Options{
		DB:           database.DB,
		Services:     services,
		Resolver:     resolver,
		Music:        music,
		Spotify:      spotify,
		MusicDir:     cfg.MusicDir,
		AppSecret:    cfg.AppSecret,
		CookieSecure: cfg.CookieSecure,
		CORSOrigins:  cfg.CORSAllowedOrigins,
	})
	r, err := handlers.NewRouter(h)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go purgeExpiredTokens(ctx, resolver)

	ln, err := core.ListenTCP("", cfg.Port)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (listening on %s)", cfg.BaseURL, ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("Received interrupt signal")
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	log.Println("System shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// musicSource builds the configured player source. A Spotify setup without a
// client ID falls back to the built-in playlist.
func musicSource(cfg *config.Config) (player.Source, *player.Spotify, error) {
	if player.Kind(cfg.MusicSource) == player.KindSpotify {
		sp, err := player.SpotifyFromConfig(cfg)
		if err == nil {
			log.Println("Music source: spotify")
			return nil, sp, nil
		}
		if !errors.Is(err, player.ErrSpotifyNotConfigured) {
			return nil, nil, err
		}
		log.Println("Warning: SPOTIFY_CLIENT_ID is not set, falling back to the built-in playlist")
		src, err := player.LoadPlaylist("")
		return src, nil, err
	}

	src, err := player.FromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load music source: %w", err)
	}
	log.Printf("Music source: %s", src.Kind())
	return src, nil, nil
}

func startMailWorker(cfg *config.Config) (func(), error) {
	smtp, err := mailer.NewSMTPSender(cfg)
	if err != nil {
		return nil, err
	}
	return mailer.StartWorker(cfg.RedisURL, smtp)
}

// purgeExpiredTokens deletes stale magic-link tokens hourly until ctx ends.
func purgeExpiredTokens(ctx context.Context, resolver *auth.Resolver) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := resolver.PurgeExpiredTokens(ctx)
			if err != nil {
				log.Printf("Failed to purge expired tokens: %v", err)
				core.LogWarn(core.SourceStorage, "token purge failed", err.Error())
				continue
			}
			if n > 0 {
				log.Printf("Purged %d expired sign-in tokens", n)
			}
		}
	}
}
