package player

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PlaylistSource serves a fixed list of tracks.
type PlaylistSource struct {
	tracks []Track
}

func (s *PlaylistSource) Kind() Kind { return KindPlaylist }

func (s *PlaylistSource) Tracks(ctx context.Context) ([]Track, error) {
	out := make([]Track, len(s.tracks))
	copy(out, s.tracks)
	return out, nil
}

// playlistEntry mirrors the JSON playlist file format.
type playlistEntry struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Src    string `json:"src"`
	Cover  string `json:"cover"`
}

// LoadPlaylist reads a JSON array of {title, artist, src, cover}. An empty path
// gives the built-in playlist holding DefaultTrack.
func LoadPlaylist(path string) (*PlaylistSource, error) {
	if path == "" {
		return &PlaylistSource{tracks: []Track{DefaultTrack}}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}
	return ParsePlaylist(data)
}

// ParsePlaylist validates and converts playlist JSON.
func ParsePlaylist(data []byte) (*PlaylistSource, error) {
	var entries []playlistEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid playlist: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("invalid playlist: no tracks")
	}

	tracks := make([]Track, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.Src) == "" {
			return nil, fmt.Errorf("invalid playlist: entry %d needs title and src", i)
		}
		tracks = append(tracks, Track{
			ID:     strconv.Itoa(i),
			Title:  e.Title,
			Artist: e.Artist,
			URL:    mediaURL(e.Src),
			Cover:  mediaURL(e.Cover),
		})
	}
	return &PlaylistSource{tracks: tracks}, nil
}

// mediaURL maps bare relative paths like "music/x.mp3" to "/media/x.mp3".
func mediaURL(src string) string {
	switch {
	case src == "":
		return ""
	case strings.HasPrefix(src, "/"), strings.Contains(src, "://"):
		return src
	}
	if _, rest, ok := strings.Cut(src, "/"); ok {
		return "/media/" + rest
	}
	return "/media/" + src
}
