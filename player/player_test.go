package player

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"memoryvault/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_HappyPath(t *testing.T) {
	m := NewMachine(InitialState(KindSpotify))
	assert.Equal(t, StateUnauth, m.State())

	for _, step := range []struct {
		ev   Event
		want State
	}{
		{EventLogin, StateAuthorizing},
		{EventAuthorized, StateTokenReady},
		{EventConnect, StateConnecting},
		{EventConnected, StateReady},
		{EventPlay, StatePlaying},
		{EventPause, StatePaused},
		{EventPlay, StatePlaying},
		{EventNotReady, StateConnecting},
		{EventFail, StateError},
		{EventReset, StateUnauth},
	} {
		got, err := m.Fire(step.ev)
		require.NoError(t, err, step.ev)
		assert.Equal(t, step.want, got, step.ev)
	}
}

func TestMachine_InvalidTransition(t *testing.T) {
	m := NewMachine(StateUnauth)
	_, err := m.Fire(EventPlay)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateUnauth, m.State())
	assert.False(t, m.Can(EventPause))
	assert.True(t, m.Can(EventLogin))
}

func TestMachine_LocalSourcesStartReady(t *testing.T) {
	assert.Equal(t, StateReady, InitialState(KindLocal))
	assert.Equal(t, StateReady, InitialState(KindPlaylist))
}

func TestRestore(t *testing.T) {
	assert.Equal(t, StatePaused, Restore("paused", StateUnauth).State())
	assert.Equal(t, StateUnauth, Restore("dancing", StateUnauth).State())
	assert.Equal(t, StateReady, Restore("", StateReady).State())
}

func TestBackoff_Delay(t *testing.T) {
	b := DefaultBackoff
	assert.Equal(t, 500*time.Millisecond, b.Delay(0))
	assert.Equal(t, time.Second, b.Delay(1))
	assert.Equal(t, 2*time.Second, b.Delay(2))
	assert.Equal(t, 8*time.Second, b.Delay(10))
}

func TestBackoff_Do(t *testing.T) {
	var waits []time.Duration
	b := DefaultBackoff
	b.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	calls := 0
	err := b.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{Code: http.StatusServiceUnavailable}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, waits)

	calls, waits = 0, nil
	err = b.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("connection reset")
	})
	assert.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.Len(t, waits, 3)

	calls = 0
	err = b.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &StatusError{Code: http.StatusForbidden}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestBackoff_HonorsRetryAfter(t *testing.T) {
	var waits []time.Duration
	b := DefaultBackoff
	b.Attempts = 2
	b.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	_ = b.Do(context.Background(), func(ctx context.Context) error {
		return &StatusError{Code: http.StatusTooManyRequests, RetryAfter: 3 * time.Second}
	})
	assert.Equal(t, []time.Duration{3 * time.Second}, waits)
}

func TestBackoff_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := DefaultBackoff.Do(ctx, func(ctx context.Context) error {
		calls++
		return &StatusError{Code: http.StatusBadGateway}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(errors.New("dial tcp: timeout")))
	assert.True(t, Retryable(&StatusError{Code: 429}))
	assert.True(t, Retryable(&StatusError{Code: 500}))
	assert.False(t, Retryable(&StatusError{Code: 401}))
	assert.False(t, Retryable(&StatusError{Code: 404}))
	assert.False(t, Retryable(context.DeadlineExceeded))
	assert.False(t, Retryable(nil))
}

func TestLocalSource(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"beautiful_things.mp3", "beautiful_things.jpeg", "Artist - our song.ogg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mp3"), 0o755))

	tracks, err := NewLocalSource(dir, "/media").Tracks(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, "Beautiful Things", tracks[0].Title)
	assert.Equal(t, "/media/beautiful_things.mp3", tracks[0].URL)
	assert.Equal(t, "/media/beautiful_things.jpeg", tracks[0].Cover)

	assert.Equal(t, "Our Song", tracks[1].Title)
	assert.Equal(t, "/media/Artist%20-%20our%20song.ogg", tracks[1].URL)
	assert.Empty(t, tracks[1].Cover)
}

func TestLocalSource_MissingDirFallsBack(t *testing.T) {
	tracks, err := NewLocalSource(filepath.Join(t.TempDir(), "nope"), "/media/").Tracks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Track{DefaultTrack}, tracks)
}

func TestParsePlaylist(t *testing.T) {
	src, err := ParsePlaylist([]byte(`[
		{"title":"Beautiful Things","artist":"Benson Boone","src":"music/beautiful_things.mp3","cover":"images/songs/beautiful_things.jpeg"},
		{"title":"Remote","src":"https://cdn.example/remote.mp3"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, KindPlaylist, src.Kind())

	tracks, err := src.Tracks(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "/media/beautiful_things.mp3", tracks[0].URL)
	assert.Equal(t, "/media/songs/beautiful_things.jpeg", tracks[0].Cover)
	assert.Equal(t, "https://cdn.example/remote.mp3", tracks[1].URL)

	_, err = ParsePlaylist([]byte(`[]`))
	assert.Error(t, err)
	_, err = ParsePlaylist([]byte(`[{"title":"no src"}]`))
	assert.Error(t, err)
	_, err = ParsePlaylist([]byte(`{`))
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	src, err := FromConfig(&config.Config{MusicSource: "playlist"})
	require.NoError(t, err)
	tracks, err := src.Tracks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Track{DefaultTrack}, tracks)

	src, err = FromConfig(&config.Config{MusicSource: "local", MusicDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, KindLocal, src.Kind())

	src, err = FromConfig(&config.Config{MusicSource: "spotify"})
	require.NoError(t, err)
	assert.Nil(t, src)

	_, err = FromConfig(&config.Config{MusicSource: "radio"})
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "3:05", formatDuration(185000))
	assert.Equal(t, "", formatDuration(0))
}
