// Package player provides the music sources behind the home page player and
// the state machine the browser reports playback progress through.
package player

import (
	"context"
	"fmt"

	"memoryvault/config"
)

// Kind names a music source.
type Kind string

const (
	KindLocal    Kind = "local"
	KindPlaylist Kind = "playlist"
	KindSpotify  Kind = "spotify"
)

// Track is one playable item regardless of source.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	URL      string `json:"url,omitempty"`
	URI      string `json:"uri,omitempty"`
	Cover    string `json:"cover,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Source lists the tracks the player can offer.
type Source interface {
	Kind() Kind
	Tracks(ctx context.Context) ([]Track, error)
}

// DefaultTrack plays when no other music is configured.
var DefaultTrack = Track{
	ID:     "beautiful-things",
	Title:  "Beautiful Things",
	Artist: "Benson Boone",
	URL:    "/media/beautiful_things.mp3",
	Cover:  "/media/beautiful_things.jpeg",
}

// FromConfig builds the static source for local or playlist modes. Spotify
// tracks depend on the visitor's token and come from Spotify.Library instead.
func FromConfig(cfg *config.Config) (Source, error) {
	switch Kind(cfg.MusicSource) {
	case KindLocal:
		return NewLocalSource(cfg.MusicDir, "/media/"), nil
	case KindPlaylist, "":
		return LoadPlaylist(cfg.PlaylistFile)
	case KindSpotify:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported music source %q", cfg.MusicSource)
	}
}

func formatDuration(ms int) string {
	if ms <= 0 {
		return ""
	}
	s := ms / 1000
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
