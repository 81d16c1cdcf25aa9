package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"memoryvault/core"
	"memoryvault/player"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Player session keys
const (
	keyPlayerState     = "player_state"
	keySpotifyToken    = "spotify_token"
	keySpotifyVerifier = "spotify_verifier"
	keySpotifyState    = "spotify_state"
)

type playerResponse struct {
	Kind   player.Kind    `json:"kind"`
	State  player.State   `json:"state"`
	Tracks []player.Track `json:"tracks"`
}

type playerEventRequest struct {
	Event string `json:"event"`
}

type playRequest struct {
	DeviceID string   `json:"deviceId"`
	URIs     []string `json:"uris"`
}

type pauseRequest struct {
	DeviceID string `json:"deviceId"`
}

// GetPlayer returns the source kind, the visitor's player state and the track list.
func (h *Handler) GetPlayer(c *gin.Context) {
	ps := sessions.Default(c)
	m := h.machine(ps)
	resp := playerResponse{Kind: h.musicKind, Tracks: []player.Track{}}

	if h.spotify == nil {
		tracks, err := h.music.Tracks(c.Request.Context())
		if err != nil {
			respondError(c, "list tracks", err)
			return
		}
		resp.State = m.State()
		resp.Tracks = tracks
		c.JSON(http.StatusOK, resp)
		return
	}

	lib := h.library(ps)
	if lib == nil {
		resp.State = m.State()
		c.JSON(http.StatusOK, resp)
		return
	}
	tracks, err := lib.Tracks(c.Request.Context())
	if err != nil {
		h.spotifyFailed(c, ps, m, "list spotify tracks", err)
		return
	}
	h.saveToken(ps, lib.Token())
	h.savePlayer(ps, m)
	resp.State = m.State()
	resp.Tracks = tracks
	c.JSON(http.StatusOK, resp)
}

// SpotifyLogin starts the PKCE authorization flow.
func (h *Handler) SpotifyLogin(c *gin.Context) {
	if h.spotify == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	ps := sessions.Default(c)
	m := h.machine(ps)
	if !m.Can(player.EventLogin) {
		m = player.NewMachine(player.StateUnauth)
	}
	if _, err := m.Fire(player.EventLogin); err != nil {
		h.pageError(c, "start spotify login", err)
		return
	}

	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()
	ps.Set(keySpotifyVerifier, verifier)
	ps.Set(keySpotifyState, state)
	h.savePlayer(ps, m)

	c.Redirect(http.StatusFound, h.spotify.AuthURL(state, verifier))
}

// SpotifyCallback completes the PKCE flow and stores the token in the player session.
func (h *Handler) SpotifyCallback(c *gin.Context) {
	if h.spotify == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	ps := sessions.Default(c)
	m := h.machine(ps)

	verifier, _ := ps.Get(keySpotifyVerifier).(string)
	state, _ := ps.Get(keySpotifyState).(string)
	ps.Delete(keySpotifyVerifier)
	ps.Delete(keySpotifyState)

	if reason := c.Query("error"); reason != "" {
		log.Printf("Spotify authorization declined: %s", reason)
		fire(m, player.EventFail)
		h.savePlayer(ps, m)
		c.Redirect(http.StatusFound, "/?spotify=denied")
		return
	}
	if state == "" || verifier == "" || c.Query("state") != state {
		fire(m, player.EventFail)
		h.savePlayer(ps, m)
		c.Redirect(http.StatusFound, "/?spotify=error")
		return
	}

	tok, err := h.spotify.Exchange(c.Request.Context(), c.Query("code"), verifier)
	if err != nil {
		recordSpotifyFailure(c, "spotify token exchange", err)
		fire(m, player.EventFail)
		h.savePlayer(ps, m)
		c.Redirect(http.StatusFound, "/?spotify=error")
		return
	}

	h.saveToken(ps, tok)
	if !m.Can(player.EventAuthorized) {
		m = player.NewMachine(player.StateAuthorizing)
	}
	fire(m, player.EventAuthorized)
	h.savePlayer(ps, m)
	c.Redirect(http.StatusFound, "/")
}

// GetPlayerToken hands the browser SDK an access token valid for at least five minutes.
func (h *Handler) GetPlayerToken(c *gin.Context) {
	if h.spotify == nil {
		jsonError(c, http.StatusNotFound, "Spotify is not enabled")
		return
	}
	ps := sessions.Default(c)
	m := h.machine(ps)
	lib := h.library(ps)
	if lib == nil {
		jsonError(c, http.StatusConflict, "Spotify is not connected")
		return
	}

	tok, err := lib.Fresh(c.Request.Context())
	if err != nil {
		h.spotifyFailed(c, ps, m, "refresh spotify token", err)
		return
	}
	h.saveToken(ps, tok)
	h.savePlayer(ps, m)
	c.JSON(http.StatusOK, gin.H{
		"accessToken": tok.AccessToken,
		"expiresAt":   tok.Expiry,
	})
}

// UpdatePlayerState applies an event reported by the browser player.
func (h *Handler) UpdatePlayerState(c *gin.Context) {
	var req playerEventRequest
	if !bindJSON(c, &req) {
		return
	}
	ev := player.Event(strings.TrimSpace(req.Event))
	if ev == "" {
		jsonError(c, http.StatusBadRequest, core.Required("event").Error())
		return
	}

	ps := sessions.Default(c)
	m := h.machine(ps)
	state, err := m.Fire(ev)
	if err != nil {
		jsonError(c, http.StatusConflict, err.Error())
		return
	}
	if ev == player.EventLogout || ev == player.EventTokenLost {
		ps.Delete(keySpotifyToken)
	}
	h.savePlayer(ps, m)
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// Play starts playback of uris on the visitor's Spotify device.
func (h *Handler) Play(c *gin.Context) {
	var req playRequest
	if !bindJSON(c, &req) {
		return
	}
	h.control(c, req.DeviceID, player.EventPlay, func(lib *player.Library) error {
		return lib.Play(c.Request.Context(), req.DeviceID, req.URIs)
	})
}

// Pause pauses playback on the visitor's Spotify device.
func (h *Handler) Pause(c *gin.Context) {
	var req pauseRequest
	if !bindJSON(c, &req) {
		return
	}
	h.control(c, req.DeviceID, player.EventPause, func(lib *player.Library) error {
		return lib.Pause(c.Request.Context(), req.DeviceID)
	})
}

func (h *Handler) control(c *gin.Context, deviceID string, ev player.Event, call func(*player.Library) error) {
	if h.spotify == nil {
		jsonError(c, http.StatusNotFound, "Spotify is not enabled")
		return
	}
	if strings.TrimSpace(deviceID) == "" {
		jsonError(c, http.StatusBadRequest, core.Required("deviceId").Error())
		return
	}
	ps := sessions.Default(c)
	m := h.machine(ps)
	lib := h.library(ps)
	if lib == nil {
		jsonError(c, http.StatusConflict, "Spotify is not connected")
		return
	}
	if !m.Can(ev) {
		jsonError(c, http.StatusConflict, "Player is "+string(m.State()))
		return
	}

	if err := call(lib); err != nil {
		h.spotifyFailed(c, ps, m, "spotify "+string(ev), err)
		return
	}
	fire(m, ev)
	h.saveToken(ps, lib.Token())
	h.savePlayer(ps, m)
	c.JSON(http.StatusOK, gin.H{"state": m.State()})
}

func (h *Handler) machine(ps sessions.Session) *player.Machine {
	saved, _ := ps.Get(keyPlayerState).(string)
	return player.Restore(saved, player.InitialState(h.musicKind))
}

func (h *Handler) library(ps sessions.Session) *player.Library {
	raw, _ := ps.Get(keySpotifyToken).(string)
	if raw == "" {
		return nil
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		ps.Delete(keySpotifyToken)
		return nil
	}
	return h.spotify.Library(&tok)
}

func (h *Handler) saveToken(ps sessions.Session, tok *oauth2.Token) {
	if tok == nil {
		return
	}
	data, err := json.Marshal(tok)
	if err != nil {
		log.Printf("Failed to encode spotify token: %v", err)
		return
	}
	ps.Set(keySpotifyToken, string(data))
}

func (h *Handler) savePlayer(ps sessions.Session, m *player.Machine) {
	ps.Set(keyPlayerState, string(m.State()))
	if err := ps.Save(); err != nil {
		log.Printf("Failed to save player session: %v", err)
	}
}

// spotifyFailed records an upstream failure and moves the player to error,
// or back to unauth when Spotify rejected the credentials.
func (h *Handler) spotifyFailed(c *gin.Context, ps sessions.Session, m *player.Machine, op string, err error) {
	recordSpotifyFailure(c, op, err)

	var se *player.StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
		ps.Delete(keySpotifyToken)
		fire(m, player.EventTokenLost)
		h.savePlayer(ps, m)
		jsonError(c, http.StatusConflict, "Spotify is not connected")
		return
	}
	fire(m, player.EventFail)
	h.savePlayer(ps, m)
	jsonError(c, http.StatusBadGateway, "Spotify request failed")
}

// fire applies ev, logging and recording events the current state rejects.
func fire(m *player.Machine, ev player.Event) {
	if _, err := m.Fire(ev); err != nil {
		log.Printf("Player event ignored: %v", err)
		core.LogWarn(core.SourceSpotify, "player event ignored", err.Error())
	}
}

func recordSpotifyFailure(c *gin.Context, op string, err error) {
	log.Printf("%s failed: %v", op, err)
	ctx := map[string]interface{}{"path": c.Request.URL.Path}
	var se *player.StatusError
	if errors.As(err, &se) {
		ctx["status"] = se.Code
	}
	core.LogErrorWithContext(core.SourceSpotify, op+" failed", err.Error(), ctx)
}
