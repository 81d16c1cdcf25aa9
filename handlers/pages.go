package handlers

import (
	"log"
	"net/http"
	"strings"

	"memoryvault/auth"
	"memoryvault/core"
	"memoryvault/models"
	"memoryvault/player"
	"memoryvault/service"

	"github.com/gin-gonic/gin"
)

type homePage struct {
	Title            string
	FirstName        string
	IsOwner          bool
	Memories         []models.Memory
	Reasons          []models.Reason
	NextEvent        *models.Event
	TimeLeft         service.TimeLeft
	ProposalUnlocked bool
	MusicEnabled     bool
	PlayerKind       player.Kind
}

type adminPage struct {
	Title             string
	Memories          []models.Memory
	MemoryCount       int64
	Reasons           []models.Reason
	ActiveReasonCount int
	Events            []models.Event
	ProposalUnlocked  bool
	MusicEnabled      bool
	Responses         []models.ProposalResponse
}

type loginPage struct {
	Title       string
	CallbackURL string
	Email       string
	Message     string
	Success     bool
}

// Home renders the timeline, reasons, countdown, proposal and player.
func (h *Handler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	session, _ := auth.SessionFromContext(c)

	page := homePage{
		Title:      "Our Story",
		FirstName:  firstName(session),
		IsOwner:    session.IsOwner(),
		PlayerKind: h.musicKind,
	}

	var err error
	if page.Memories, err = h.services.Memories.List(ctx); err != nil {
		h.pageError(c, "load memories", err)
		return
	}
	if page.Reasons, err = h.services.Reasons.ListActive(ctx); err != nil {
		h.pageError(c, "load reasons", err)
		return
	}
	if page.NextEvent, err = h.services.Events.Next(ctx); err != nil {
		h.pageError(c, "load events", err)
		return
	}
	if page.NextEvent != nil {
		page.TimeLeft = service.Countdown(h.now(), page.NextEvent.TargetDate)
	}
	if page.ProposalUnlocked, err = h.services.Settings.ProposalUnlocked(ctx); err != nil {
		h.pageError(c, "load settings", err)
		return
	}
	if page.MusicEnabled, err = h.services.Settings.BackgroundMusicEnabled(ctx); err != nil {
		h.pageError(c, "load settings", err)
		return
	}

	c.HTML(http.StatusOK, "home.html", page)
}

// Admin renders the owner dashboard. PageGuard has already rejected non-owners.
func (h *Handler) Admin(c *gin.Context) {
	ctx := c.Request.Context()
	page := adminPage{Title: "Admin Dashboard"}

	var err error
	if page.Memories, err = h.services.Memories.ListRecent(ctx); err != nil {
		h.pageError(c, "load memories", err)
		return
	}
	if page.MemoryCount, err = h.services.Memories.Count(ctx); err != nil {
		h.pageError(c, "count memories", err)
		return
	}
	if page.Reasons, err = h.services.Reasons.ListAll(ctx); err != nil {
		h.pageError(c, "load reasons", err)
		return
	}
	for _, r := range page.Reasons {
		if r.IsActive {
			page.ActiveReasonCount++
		}
	}
	if page.Events, err = h.services.Events.List(ctx); err != nil {
		h.pageError(c, "load events", err)
		return
	}
	if page.ProposalUnlocked, err = h.services.Settings.ProposalUnlocked(ctx); err != nil {
		h.pageError(c, "load settings", err)
		return
	}
	if page.MusicEnabled, err = h.services.Settings.BackgroundMusicEnabled(ctx); err != nil {
		h.pageError(c, "load settings", err)
		return
	}
	if page.Responses, err = h.services.Proposals.List(ctx); err != nil {
		h.pageError(c, "load proposal responses", err)
		return
	}

	c.HTML(http.StatusOK, "admin.html", page)
}

// LoginPage renders the sign-in form with the outcome of the previous attempt.
func (h *Handler) LoginPage(c *gin.Context) {
	status := c.Query("status")
	msg := loginMessages[status]
	if e := c.Query("error"); e != "" && msg == "" {
		msg = loginMessages[errVerification]
	}
	h.renderLogin(c, http.StatusOK, c.Query("callbackUrl"), "", msg, status == statusSent)
}

func (h *Handler) renderLogin(c *gin.Context, status int, callbackURL, email, message string, ok bool) {
	c.HTML(status, "login.html", loginPage{
		Title:       "Sign in",
		CallbackURL: auth.SafeCallback(callbackURL),
		Email:       email,
		Message:     message,
		Success:     ok,
	})
}

func (h *Handler) Unauthorized(c *gin.Context) {
	c.HTML(http.StatusForbidden, "unauthorized.html", gin.H{"Title": "Access Denied"})
}

func (h *Handler) pageError(c *gin.Context, op string, err error) {
	log.Printf("%s failed: %v", op, err)
	core.LogErrorWithContext(core.SourceStorage, op+" failed", err.Error(), map[string]interface{}{
		"path": c.Request.URL.Path,
	})
	c.String(http.StatusInternalServerError, msgInternalError)
}

// firstName greets by the first word of the display name, or the local part of the email.
func firstName(s *auth.Session) string {
	if s == nil {
		return ""
	}
	if fields := strings.Fields(s.Name); len(fields) > 0 {
		return fields[0]
	}
	if at := strings.IndexByte(s.Email, '@'); at > 0 {
		return s.Email[:at]
	}
	return s.Email
}
