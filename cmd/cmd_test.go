package cmd

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"memoryvault/config"
	"memoryvault/player"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging_RotatesOnce(t *testing.T) {
	orig := log.Writer()
	t.Cleanup(func() { log.SetOutput(orig) })

	path := filepath.Join(t.TempDir(), "memoryvault.log")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))
	require.NoError(t, os.WriteFile(path+".1", []byte("older"), 0644))

	f, err := setupLogging(path)
	require.NoError(t, err)
	log.Print("fresh")
	require.NoError(t, f.Close())

	prev, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, "old", string(prev))

	cur, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(cur), "fresh")
}

func TestSetupLogging_EmptyPathKeepsStderr(t *testing.T) {
	f, err := setupLogging("")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestMusicSource(t *testing.T) {
	src, sp, err := musicSource(&config.Config{MusicSource: "spotify"})
	require.NoError(t, err)
	assert.Nil(t, sp)
	require.NotNil(t, src)
	assert.Equal(t, player.KindPlaylist, src.Kind())

	_, sp, err = musicSource(&config.Config{MusicSource: "spotify", SpotifyClientID: "id", BaseURL: "http://localhost:8080"})
	require.NoError(t, err)
	assert.NotNil(t, sp)

	src, _, err = musicSource(&config.Config{MusicSource: "local", MusicDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, player.KindLocal, src.Kind())
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "seed", "link", "worker", "version", "env"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("allowed-email"))
}

func TestEnvCommand_PrintsVariables(t *testing.T) {
	var out bytes.Buffer
	envCmd.SetOut(&out)
	envCmd.Run(envCmd, nil)
	assert.Contains(t, out.String(), "ALLOWED_EMAIL")
	assert.Contains(t, out.String(), "SPOTIFY_CLIENT_ID")
}

func TestRunServe_RejectsDevSecret(t *testing.T) {
	for _, key := range []string{"APP_SECRET", "DEV_MODE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	saved := config.Settings
	t.Cleanup(func() { config.Settings = saved })
	config.Settings = config.Load()

	err := runServe(serveCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_SECRET")
}
