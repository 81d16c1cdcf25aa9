package handlers

import (
	"fmt"
	"net/http"
	"time"

	"memoryvault/auth"
	"memoryvault/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// playerSessionName is the cookie holding per-visitor player state.
const playerSessionName = "memoryvault_player"

// NewRouter builds the gin engine with every page and API route.
func NewRouter(h *Handler) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	r := gin.Default()
	r.SetHTMLTemplate(tmpl)

	store := cookie.NewStore(
		auth.DeriveKey(h.appSecret, auth.PurposeCookie),
		auth.DeriveKey(h.appSecret, auth.PurposeCipher),
	)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(h.tokens.MaxAge().Seconds()),
		Secure:   h.cookies.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(playerSessionName, store))
	r.Use(auth.LoadSession(h.tokens, h.cookies), auth.PageGuard())

	r.StaticFS("/static", http.FS(web.Static()))
	if h.musicDir != "" {
		r.Static("/media", h.musicDir)
	}

	// Pages
	r.GET("/", h.Home)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/admin", h.Admin)
	r.GET("/unauthorized", h.Unauthorized)

	// Spotify PKCE login
	r.GET("/spotify/login", h.SpotifyLogin)
	r.GET("/spotify/callback", h.SpotifyCallback)

	r.GET("/metrics", h.GetPrometheusMetrics)

	api := r.Group("/api")
	if len(h.corsOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:     h.corsOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
		// preflight requests match no other route
		api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}
	{
		api.GET("/health", h.HealthCheck)

		api.GET("/auth/callback/email", h.VerifyEmail)
		api.GET("/auth/session", h.GetSession)
		api.POST("/auth/signout", h.SignOut)
	}

	signedIn := api.Group("", auth.RequireSessionAPI())
	{
		signedIn.GET("/memories", h.ListMemories)
		signedIn.GET("/reasons", h.ListReasons)
		signedIn.GET("/events", h.ListEvents)
		signedIn.GET("/settings", h.GetSettings)

		signedIn.POST("/proposal", h.RespondToProposal)

		signedIn.GET("/player", h.GetPlayer)
		signedIn.GET("/player/token", h.GetPlayerToken)
		signedIn.POST("/player/state", h.UpdatePlayerState)
		signedIn.POST("/player/play", h.Play)
		signedIn.POST("/player/pause", h.Pause)
	}

	owner := api.Group("", auth.RequireOwnerAPI())
	{
		owner.POST("/memories", h.CreateMemory)
		owner.PUT("/memories", h.UpdateMemory)
		owner.DELETE("/memories", h.DeleteMemory)

		owner.POST("/reasons", h.CreateReason)
		owner.PUT("/reasons", h.UpdateReason)
		owner.DELETE("/reasons", h.DeleteReason)

		owner.POST("/events", h.CreateEvent)
		owner.DELETE("/events", h.DeleteEvent)

		owner.PUT("/settings", h.UpdateSetting)

		owner.GET("/proposal", h.ListProposalResponses)

		owner.GET("/error-logs", h.GetErrorLogs)
		owner.DELETE("/error-logs", h.ClearErrorLogs)
	}

	return r, nil
}
