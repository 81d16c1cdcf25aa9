package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Config holds MemoryVault runtime configuration.
type Config struct {
	LogLevel    string
	LogFilePath string
	Port        int
	BaseURL     string

	// Identity and sessions
	AppSecret        string
	AllowedEmail     string
	SessionMaxAge    time.Duration
	SessionUpdateAge time.Duration
	MagicLinkMaxAge  time.Duration
	CookieSecure     bool

	// DevMode allows the built-in development secret.
	DevMode bool

	// Storage
	DatabaseDriver       string
	DatabaseURL          string
	SQLitePragmasEnabled bool
	SQLiteBusyTimeoutMS  int
	SQLiteJournalMode    string
	SQLiteSynchronous    string
	SQLiteForeignKeys    bool
	SQLiteMaxOpenConns   int
	SQLiteMaxIdleConns   int
	SQLiteConnMaxIdleSec int
	SQLiteConnMaxLifeSec int

	// Magic-link mail delivery
	EmailServerHost     string
	EmailServerPort     int
	EmailServerUser     string
	EmailServerPassword string
	EmailFrom           string
	RedisURL            string
	MailQueueMaxRetry   int

	CORSAllowedOrigins []string

	// Music player
	MusicSource         string
	MusicDir            string
	PlaylistFile        string
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURL  string
}

// Settings is the global configuration instance populated from environment variables and flags.
var Settings *Config

const devAppSecret = "dev-secret-change-in-production-use-openssl-rand-hex-32"

func init() {
	Settings = Load()
}

// Load builds a Config from environment variables, falling back to development defaults.
func Load() *Config {
	port := getEnvInt("PORT", 8080)
	return &Config{
		LogLevel:    strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		LogFilePath: getEnv("LOG_FILE", ""),
		Port:        port,
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", fmt.Sprintf("http://localhost:%d", port)), "/"),

		AppSecret:        getEnv("APP_SECRET", devAppSecret),
		AllowedEmail:     strings.TrimSpace(getEnv("ALLOWED_EMAIL", "")),
		SessionMaxAge:    getEnvDuration("SESSION_MAX_AGE", 30*24*time.Hour),
		SessionUpdateAge: getEnvDuration("SESSION_UPDATE_AGE", 24*time.Hour),
		MagicLinkMaxAge:  getEnvDuration("MAGIC_LINK_MAX_AGE", 24*time.Hour),
		CookieSecure:     getEnvBool("COOKIE_SECURE", false),
		DevMode:          getEnvBool("DEV_MODE", false),

		DatabaseDriver:       strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		DatabaseURL:          getEnv("DATABASE_URL", "memoryvault.db"),
		SQLitePragmasEnabled: getEnvBool("SQLITE_PRAGMAS_ENABLED", true),
		SQLiteBusyTimeoutMS:  getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteJournalMode:    getEnv("SQLITE_JOURNAL_MODE", "WAL"),
		SQLiteSynchronous:    getEnv("SQLITE_SYNCHRONOUS", "NORMAL"),
		SQLiteForeignKeys:    getEnvBool("SQLITE_FOREIGN_KEYS", true),
		SQLiteMaxOpenConns:   getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:   getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),
		SQLiteConnMaxIdleSec: getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", 300),
		SQLiteConnMaxLifeSec: getEnvInt("SQLITE_CONN_MAX_LIFETIME_SECONDS", 0),

		EmailServerHost:     getEnv("EMAIL_SERVER_HOST", ""),
		EmailServerPort:     getEnvInt("EMAIL_SERVER_PORT", 587),
		EmailServerUser:     getEnv("EMAIL_SERVER_USER", ""),
		EmailServerPassword: getEnv("EMAIL_SERVER_PASSWORD", ""),
		EmailFrom:           getEnv("EMAIL_FROM", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		MailQueueMaxRetry:   getEnvInt("MAIL_QUEUE_MAX_RETRY", 0),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),

		MusicSource:         strings.ToLower(getEnv("MUSIC_SOURCE", "playlist")),
		MusicDir:            getEnv("MUSIC_DIR", "./music"),
		PlaylistFile:        getEnv("PLAYLIST_FILE", ""),
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		SpotifyRedirectURL:  getEnv("SPOTIFY_REDIRECT_URL", ""),
	}
}

// BindFlags registers command-line overrides for the most commonly tuned settings.
// Defaults are the values already loaded from the environment.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.Port, "port", c.Port, "HTTP server port (overrides PORT)")
	fs.StringVar(&c.BaseURL, "base-url", c.BaseURL, "Public base URL used in magic links (overrides BASE_URL)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	fs.StringVar(&c.LogFilePath, "log-file", c.LogFilePath, "Log file path, empty for stderr (overrides LOG_FILE)")
	fs.StringVar(&c.DatabaseDriver, "db-driver", c.DatabaseDriver, "Database driver: sqlite or postgres (overrides DATABASE_DRIVER)")
	fs.StringVar(&c.DatabaseURL, "db", c.DatabaseURL, "SQLite path or PostgreSQL DSN (overrides DATABASE_URL)")
	fs.BoolVar(&c.SQLitePragmasEnabled, "sqlite-pragmas", c.SQLitePragmasEnabled, "Enable SQLite PRAGMAs (overrides SQLITE_PRAGMAS_ENABLED)")
	fs.BoolVar(&c.DevMode, "dev", c.DevMode, "Allow the built-in development APP_SECRET (overrides DEV_MODE)")
	fs.StringVar(&c.AllowedEmail, "allowed-email", c.AllowedEmail, "The single email address admitted to sign in (overrides ALLOWED_EMAIL)")
	fs.DurationVar(&c.SessionMaxAge, "session-max-age", c.SessionMaxAge, "Absolute session lifetime (overrides SESSION_MAX_AGE)")
	fs.DurationVar(&c.SessionUpdateAge, "session-update-age", c.SessionUpdateAge, "Re-issue sessions older than this, 0 disables (overrides SESSION_UPDATE_AGE)")
	fs.StringVar(&c.RedisURL, "redis", c.RedisURL, "Redis URL for the mail queue, empty sends inline (overrides REDIS_URL)")
	fs.StringVar(&c.MusicSource, "music-source", c.MusicSource, "Music source: local, playlist or spotify (overrides MUSIC_SOURCE)")
}

// Validate reports configuration that would make the server unusable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	switch c.MusicSource {
	case "local", "playlist", "spotify":
	default:
		return fmt.Errorf("unsupported music source %q", c.MusicSource)
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be positive")
	}
	if strings.TrimSpace(c.AppSecret) == "" {
		return fmt.Errorf("APP_SECRET must not be empty")
	}
	if c.UsingDevSecret() && !c.allowsDevSecret() {
		return fmt.Errorf("APP_SECRET is not set; set it, or pass --dev (DEV_MODE=true or LOG_LEVEL=DEBUG) for local development")
	}
	return nil
}

// UsingDevSecret reports whether the built-in development secret is in use.
func (c *Config) UsingDevSecret() bool {
	return c.AppSecret == devAppSecret
}

func (c *Config) allowsDevSecret() bool {
	return c.DevMode || strings.EqualFold(c.LogLevel, "DEBUG")
}

// PrintEnvHelp writes the list of recognized environment variables.
func PrintEnvHelp(out io.Writer) {
	fmt.Fprintln(out, "Environment variables:")
	fmt.Fprintln(out, "  PORT                      HTTP server port (default 8080)")
	fmt.Fprintln(out, "  BASE_URL                  Public base URL used in magic links")
	fmt.Fprintln(out, "  APP_SECRET                Secret used to derive session signing keys")
	fmt.Fprintln(out, "  DEV_MODE                  Allow the built-in development APP_SECRET")
	fmt.Fprintln(out, "  ALLOWED_EMAIL             The single email address allowed to sign in")
	fmt.Fprintln(out, "  LOG_LEVEL                 Log level (DEBUG, INFO, WARN, ERROR)")
	fmt.Fprintln(out, "  LOG_FILE                  Log file path (default stderr)")
	fmt.Fprintln(out, "  DATABASE_DRIVER           sqlite or postgres (default sqlite)")
	fmt.Fprintln(out, "  DATABASE_URL              SQLite path or PostgreSQL DSN (default memoryvault.db)")
	fmt.Fprintln(out, "  SESSION_MAX_AGE           Absolute session lifetime (default 720h)")
	fmt.Fprintln(out, "  SESSION_UPDATE_AGE        Sliding renewal age, 0 disables (default 24h)")
	fmt.Fprintln(out, "  EMAIL_SERVER_HOST         SMTP host; empty logs magic links instead of sending")
	fmt.Fprintln(out, "  EMAIL_SERVER_PORT         SMTP port (default 587)")
	fmt.Fprintln(out, "  EMAIL_SERVER_USER         SMTP user")
	fmt.Fprintln(out, "  EMAIL_SERVER_PASSWORD     SMTP password")
	fmt.Fprintln(out, "  EMAIL_FROM                Sender address")
	fmt.Fprintln(out, "  REDIS_URL                 Enables the asynq mail queue")
	fmt.Fprintln(out, "  CORS_ALLOWED_ORIGINS      Comma-separated origins allowed on /api")
	fmt.Fprintln(out, "  MUSIC_SOURCE              local, playlist or spotify (default playlist)")
	fmt.Fprintln(out, "  MUSIC_DIR                 Directory scanned by the local source (default ./music)")
	fmt.Fprintln(out, "  PLAYLIST_FILE             JSON playlist for the playlist source")
	fmt.Fprintln(out, "  SPOTIFY_CLIENT_ID         Spotify application client ID")
	fmt.Fprintln(out, "  SPOTIFY_CLIENT_SECRET     Spotify application client secret (optional with PKCE)")
	fmt.Fprintln(out, "  SPOTIFY_REDIRECT_URL      Spotify redirect URL (default BASE_URL/spotify/callback)")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
