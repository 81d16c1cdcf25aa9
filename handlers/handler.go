package handlers

import (
	"time"

	"memoryvault/auth"
	"memoryvault/player"
	"memoryvault/service"

	"gorm.io/gorm"
)

// Options wires the dependencies the HTTP layer needs.
type Options struct {
	DB       *gorm.DB
	Services *service.Services
	Resolver *auth.Resolver

	// Music is the static source for local and playlist modes. Spotify, when
	// set, takes precedence and tracks are loaded per visitor.
	Music    player.Source
	Spotify  *player.Spotify
	MusicDir string

	AppSecret    string
	CookieSecure bool
	CORSOrigins  []string
}

// Handler serves pages and the JSON API.
type Handler struct {
	db          *gorm.DB
	services    *service.Services
	resolver    *auth.Resolver
	tokens      *auth.TokenManager
	cookies     auth.CookieOptions
	music       player.Source
	spotify     *player.Spotify
	musicKind   player.Kind
	musicDir    string
	appSecret   string
	corsOrigins []string
	now         func() time.Time
}

func New(opts Options) *Handler {
	h := &Handler{
		db:          opts.DB,
		services:    opts.Services,
		resolver:    opts.Resolver,
		cookies:     auth.CookieOptions{Secure: opts.CookieSecure},
		music:       opts.Music,
		spotify:     opts.Spotify,
		musicDir:    opts.MusicDir,
		appSecret:   opts.AppSecret,
		corsOrigins: opts.CORSOrigins,
		now:         time.Now,
	}
	if opts.Resolver != nil {
		h.tokens = opts.Resolver.Tokens()
	}

	switch {
	case h.spotify != nil:
		h.musicKind = player.KindSpotify
	case h.music != nil:
		h.musicKind = h.music.Kind()
	default:
		h.music, _ = player.LoadPlaylist("")
		h.musicKind = player.KindPlaylist
	}
	return h
}
