package player

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

var audioExts = map[string]bool{".mp3": true, ".m4a": true, ".ogg": true, ".wav": true, ".flac": true, ".aac": true}

var coverExts = []string{".jpg", ".jpeg", ".png", ".webp"}

// LocalSource lists audio files from a directory served under urlPrefix.
type LocalSource struct {
	dir       string
	urlPrefix string
}

func NewLocalSource(dir, urlPrefix string) *LocalSource {
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &LocalSource{dir: dir, urlPrefix: urlPrefix}
}

func (s *LocalSource) Kind() Kind { return KindLocal }

// Tracks scans the directory on every call. A missing or empty directory
// yields the default track.
func (s *LocalSource) Tracks(ctx context.Context) ([]Track, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Track{DefaultTrack}, nil
		}
		return nil, fmt.Errorf("failed to read music directory: %w", err)
	}

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names[e.Name()] = true
		}
	}

	var tracks []Track
	for _, e := range entries {
		if e.IsDir() || !audioExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		t := Track{
			ID:    base,
			Title: titleFromFilename(base),
			URL:   s.urlPrefix + url.PathEscape(e.Name()),
		}
		for _, ext := range coverExts {
			if names[base+ext] {
				t.Cover = s.urlPrefix + url.PathEscape(base+ext)
				break
			}
		}
		tracks = append(tracks, t)
	}

	if len(tracks) == 0 {
		return []Track{DefaultTrack}, nil
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Title < tracks[j].Title })
	return tracks, nil
}

// titleFromFilename turns "beautiful_things" into "Beautiful Things".
// A "Artist - Title" name keeps only the title part.
func titleFromFilename(base string) string {
	if _, title, ok := strings.Cut(base, " - "); ok {
		base = title
	}
	words := strings.FieldsFunc(base, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
