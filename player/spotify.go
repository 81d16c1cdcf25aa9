package player

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"memoryvault/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/spotify"
)

// SpotifyScopes are requested at login.
var SpotifyScopes = []string{
	"user-read-private",
	"user-read-email",
	"user-modify-playback-state",
	"user-read-playback-state",
	"user-read-currently-playing",
	"playlist-read-private",
	"playlist-read-collaborative",
	"streaming",
}

// refreshEarly is how long before expiry a token is treated as stale.
const refreshEarly = 5 * time.Minute

// ErrSpotifyNotConfigured is returned when no client ID is set.
var ErrSpotifyNotConfigured = errors.New("spotify is not configured")

// SpotifyOptions configures a Spotify client.
type SpotifyOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	APIBase      string
	HTTPClient   *http.Client
	Backoff      Backoff
}

// Spotify performs the PKCE login and builds per-visitor libraries.
type Spotify struct {
	oauth      *oauth2.Config
	apiBase    string
	httpClient *http.Client
	backoff    Backoff
}

// SpotifyFromConfig builds a client against the real Spotify endpoints.
func SpotifyFromConfig(cfg *config.Config) (*Spotify, error) {
	redirect := cfg.SpotifyRedirectURL
	if redirect == "" {
		redirect = cfg.BaseURL + "/spotify/callback"
	}
	return NewSpotify(SpotifyOptions{
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
		RedirectURL:  redirect,
		Endpoint:     spotify.Endpoint,
		APIBase:      "https://api.spotify.com",
	})
}

func NewSpotify(opts SpotifyOptions) (*Spotify, error) {
	if opts.ClientID == "" {
		return nil, ErrSpotifyNotConfigured
	}
	endpoint := opts.Endpoint
	if opts.ClientSecret == "" {
		// public PKCE clients must send client_id in the form body
		endpoint.AuthStyle = oauth2.AuthStyleInParams
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	backoff := opts.Backoff
	if backoff.Attempts == 0 {
		backoff = DefaultBackoff
	}
	return &Spotify{
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       SpotifyScopes,
		},
		apiBase:    strings.TrimRight(opts.APIBase, "/"),
		httpClient: httpClient,
		backoff:    backoff,
	}, nil
}

// AuthURL returns the authorization URL carrying the S256 challenge of verifier.
func (s *Spotify) AuthURL(state, verifier string) string {
	return s.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades an authorization code for a token.
func (s *Spotify) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	var tok *oauth2.Token
	err := s.backoff.Do(s.clientContext(ctx), func(ctx context.Context) error {
		t, err := s.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
		if err != nil {
			return tokenError(err)
		}
		tok = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("spotify token exchange failed: %w", err)
	}
	return tok, nil
}

// Library returns a Source over the visitor's playlists for tok.
func (s *Spotify) Library(tok *oauth2.Token) *Library {
	return &Library{sp: s, tok: tok}
}

func (s *Spotify) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// tokenError exposes the token endpoint status so Backoff can tell final from transient failures.
func tokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &StatusError{Code: re.Response.StatusCode, Message: "token endpoint: " + strings.TrimSpace(string(re.Body))}
	}
	return err
}

// Library is the Spotify Source for one visitor. It refreshes its token as needed;
// callers persist Token() afterwards.
type Library struct {
	sp  *Spotify
	tok *oauth2.Token
}

func (l *Library) Kind() Kind { return KindSpotify }

// Token returns the current, possibly refreshed, token.
func (l *Library) Token() *oauth2.Token {
	return l.tok
}

// Fresh returns a token valid for at least five more minutes, refreshing if needed.
func (l *Library) Fresh(ctx context.Context) (*oauth2.Token, error) {
	if l.tok == nil {
		return nil, ErrSpotifyNotConfigured
	}
	if l.tok.Expiry.IsZero() || time.Until(l.tok.Expiry) > refreshEarly {
		return l.tok, nil
	}
	if err := l.refresh(ctx); err != nil {
		return nil, err
	}
	return l.tok, nil
}

func (l *Library) refresh(ctx context.Context) error {
	if l.tok.RefreshToken == "" {
		return &StatusError{Code: http.StatusUnauthorized, Message: "no refresh token"}
	}
	ctx = l.sp.clientContext(ctx)
	src := l.sp.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: l.tok.RefreshToken})
	ts := oauth2.ReuseTokenSourceWithExpiry(nil, src, refreshEarly)
	return l.sp.backoff.Do(ctx, func(ctx context.Context) error {
		t, err := ts.Token()
		if err != nil {
			return tokenError(err)
		}
		l.tok = t
		return nil
	})
}

// Tracks lists the tracks of the visitor's first playlist.
func (l *Library) Tracks(ctx context.Context) ([]Track, error) {
	var playlists struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := l.do(ctx, http.MethodGet, "/v1/me/playlists?limit=1", nil, &playlists); err != nil {
		return nil, err
	}
	if len(playlists.Items) == 0 {
		return []Track{}, nil
	}

	var page struct {
		Items []struct {
			Track *struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				URI     string `json:"uri"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
				Album struct {
					Name   string `json:"name"`
					Images []struct {
						URL string `json:"url"`
					} `json:"images"`
				} `json:"album"`
				DurationMS int `json:"duration_ms"`
			} `json:"track"`
		} `json:"items"`
	}
	path := "/v1/playlists/" + url.PathEscape(playlists.Items[0].ID) + "/tracks"
	if err := l.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(page.Items))
	for _, item := range page.Items {
		t := item.Track
		if t == nil || t.ID == "" {
			continue
		}
		artists := make([]string, 0, len(t.Artists))
		for _, a := range t.Artists {
			artists = append(artists, a.Name)
		}
		track := Track{
			ID:       t.ID,
			Title:    t.Name,
			Artist:   strings.Join(artists, ", "),
			Album:    t.Album.Name,
			URI:      t.URI,
			Duration: formatDuration(t.DurationMS),
		}
		if len(t.Album.Images) > 0 {
			track.Cover = t.Album.Images[0].URL
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// Play starts uris on the given Web Playback SDK device. No uris resumes playback.
func (l *Library) Play(ctx context.Context, deviceID string, uris []string) error {
	var body interface{}
	if len(uris) > 0 {
		body = map[string][]string{"uris": uris}
	}
	return l.do(ctx, http.MethodPut, "/v1/me/player/play"+deviceQuery(deviceID), body, nil)
}

// Pause pauses playback on the device.
func (l *Library) Pause(ctx context.Context, deviceID string) error {
	return l.do(ctx, http.MethodPut, "/v1/me/player/pause"+deviceQuery(deviceID), nil, nil)
}

func deviceQuery(deviceID string) string {
	if deviceID == "" {
		return ""
	}
	return "?device_id=" + url.QueryEscape(deviceID)
}

// do retries transient failures with the backoff and refreshes once on 401.
func (l *Library) do(ctx context.Context, method, path string, body, out interface{}) error {
	refreshed := false
	for {
		err := l.sp.backoff.Do(ctx, func(ctx context.Context) error {
			return l.once(ctx, method, path, body, out)
		})
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusUnauthorized && !refreshed {
			refreshed = true
			if rerr := l.refresh(ctx); rerr != nil {
				return rerr
			}
			continue
		}
		return err
	}
}

func (l *Library) once(ctx context.Context, method, path string, body, out interface{}) error {
	tok, err := l.Fresh(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, l.sp.apiBase+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := l.sp.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode spotify response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) *StatusError {
	se := &StatusError{Code: resp.StatusCode}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &payload) == nil {
		se.Message = payload.Error.Message
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		se.RetryAfter = time.Duration(secs) * time.Second
	}
	return se
}
