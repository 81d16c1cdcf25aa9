package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_DRIVER", "SESSION_MAX_AGE", "SESSION_UPDATE_AGE", "MUSIC_SOURCE", "BASE_URL", "APP_SECRET", "DEV_MODE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	c := Load()

	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, "http://localhost:8080", c.BaseURL)
	assert.Equal(t, "sqlite", c.DatabaseDriver)
	assert.Equal(t, 30*24*time.Hour, c.SessionMaxAge)
	assert.Equal(t, 24*time.Hour, c.SessionUpdateAge)
	assert.Equal(t, "playlist", c.MusicSource)
	assert.True(t, c.UsingDevSecret())
	assert.False(t, c.DevMode)
	require.Error(t, c.Validate(), "the development secret must not pass validation by default")
}

func TestValidate_DevSecret(t *testing.T) {
	for _, key := range []string{"APP_SECRET", "DEV_MODE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	c := Load()
	require.True(t, c.UsingDevSecret())
	assert.Error(t, c.Validate())

	c.LogLevel = "DEBUG"
	assert.NoError(t, c.Validate())

	c.LogLevel = "INFO"
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--dev"}))
	assert.NoError(t, c.Validate())

	t.Setenv("DEV_MODE", "true")
	assert.NoError(t, Load().Validate())

	t.Setenv("DEV_MODE", "")
	t.Setenv("APP_SECRET", "a-real-secret")
	assert.NoError(t, Load().Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BASE_URL", "https://vault.example/")
	t.Setenv("SESSION_UPDATE_AGE", "0s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DATABASE_DRIVER", "Postgres")

	c := Load()

	assert.Equal(t, 9090, c.Port)
	assert.Equal(t, "https://vault.example", c.BaseURL)
	assert.Equal(t, time.Duration(0), c.SessionUpdateAge)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSAllowedOrigins)
	assert.Equal(t, "postgres", c.DatabaseDriver)
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("SESSION_MAX_AGE", "forever")
	t.Setenv("COOKIE_SECURE", "maybe")

	c := Load()

	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, 30*24*time.Hour, c.SessionMaxAge)
	assert.False(t, c.CookieSecure)
}

func TestBindFlags_OverridesEnv(t *testing.T) {
	c := &Config{Port: 8080, DatabaseDriver: "sqlite", MusicSource: "playlist", SessionMaxAge: time.Hour}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.BindFlags(fs)

	require.NoError(t, fs.Parse([]string{"--port", "7000", "--allowed-email", "me@example.com", "--session-update-age", "0"}))

	assert.Equal(t, 7000, c.Port)
	assert.Equal(t, "me@example.com", c.AllowedEmail)
	assert.Equal(t, time.Duration(0), c.SessionUpdateAge)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Port = 0 }, true},
		{"bad driver", func(c *Config) { c.DatabaseDriver = "mysql" }, true},
		{"bad music source", func(c *Config) { c.MusicSource = "radio" }, true},
		{"zero session age", func(c *Config) { c.SessionMaxAge = 0 }, true},
		{"empty secret", func(c *Config) { c.AppSecret = " " }, true},
		{"dev secret", func(c *Config) { c.AppSecret = devAppSecret }, true},
		{"dev secret in dev mode", func(c *Config) { c.AppSecret, c.DevMode = devAppSecret, true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Port: 8080, DatabaseDriver: "sqlite", MusicSource: "local", SessionMaxAge: time.Hour, AppSecret: "test-secret"}
			tt.mutate(c)
			if tt.wantErr {
				assert.Error(t, c.Validate())
			} else {
				assert.NoError(t, c.Validate())
			}
		})
	}
}
