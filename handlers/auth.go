package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"memoryvault/auth"
	"memoryvault/core"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Sign-in outcomes shown on the login page.
const (
	statusSent      = "sent"
	statusDenied    = "denied"
	statusError     = "error"
	errVerification = "Verification"
)

var loginMessages = map[string]string{
	statusSent:      "Check your email for the magic link!",
	statusDenied:    "This email is not authorized to access this application.",
	statusError:     "Error sending email. Please try again.",
	errVerification: "That sign-in link is invalid or has expired. Please request a new one.",
}

type signInRequest struct {
	Email       string `form:"email" json:"email"`
	CallbackURL string `form:"callbackUrl" json:"callbackUrl"`
}

// Login requests a magic link. Browser forms are answered with a redirect back
// to the login page; JSON requests get a JSON message.
func (h *Handler) Login(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBind(&req); err != nil {
		jsonError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		h.signInResult(c, req, http.StatusBadRequest, "", core.Required("email").Error())
		return
	}

	err := h.resolver.RequestSignIn(c.Request.Context(), req.Email, req.CallbackURL)
	switch {
	case err == nil:
		h.signInResult(c, req, http.StatusOK, statusSent, loginMessages[statusSent])
	case errors.Is(err, core.ErrAccessDenied):
		log.Printf("Sign-in refused for non-allowlisted address")
		h.signInResult(c, req, http.StatusForbidden, statusDenied, loginMessages[statusDenied])
	case errors.Is(err, auth.ErrDelivery):
		h.signInResult(c, req, http.StatusBadGateway, statusError, loginMessages[statusError])
	default:
		log.Printf("Sign-in request failed: %v", err)
		core.LogErrorWithDetail(core.SourceAuth, "sign-in request failed", err.Error())
		h.signInResult(c, req, http.StatusInternalServerError, statusError, loginMessages[statusError])
	}
}

func (h *Handler) signInResult(c *gin.Context, req signInRequest, status int, outcome, message string) {
	if c.ContentType() == gin.MIMEJSON {
		if status >= http.StatusBadRequest {
			jsonError(c, status, message)
			return
		}
		c.JSON(status, gin.H{"message": message})
		return
	}

	if outcome == "" {
		h.renderLogin(c, status, req.CallbackURL, req.Email, message, false)
		return
	}
	q := url.Values{}
	q.Set("status", outcome)
	if cb := auth.SafeCallback(req.CallbackURL); cb != "/" {
		q.Set("callbackUrl", cb)
	}
	c.Redirect(http.StatusSeeOther, "/login?"+q.Encode())
}

// VerifyEmail consumes a magic link and starts a session.
func (h *Handler) VerifyEmail(c *gin.Context) {
	email := c.Query("email")
	session, err := h.resolver.Verify(c.Request.Context(), email, c.Query("token"))
	switch {
	case err == nil:
	case errors.Is(err, core.ErrAccessDenied):
		c.Redirect(http.StatusFound, "/unauthorized")
		return
	case errors.Is(err, core.ErrInvalidToken):
		c.Redirect(http.StatusFound, "/login?error="+errVerification)
		return
	default:
		log.Printf("Magic link verification failed: %v", err)
		core.LogErrorWithDetail(core.SourceAuth, "magic link verification failed", err.Error())
		c.Redirect(http.StatusFound, "/login?status="+statusError)
		return
	}

	token, expires, err := h.tokens.Issue(session)
	if err != nil {
		log.Printf("Failed to sign session: %v", err)
		core.LogErrorWithDetail(core.SourceAuth, "failed to sign session", err.Error())
		c.Redirect(http.StatusFound, "/login?status="+statusError)
		return
	}
	auth.SetSessionCookie(c, token, expires, h.cookies)
	log.Printf("Signed in %s as %s", session.Email, session.Role)
	c.Redirect(http.StatusFound, auth.SafeCallback(c.Query("callbackUrl")))
}

// GetSession returns the signed-in user, or an empty object.
func (h *Handler) GetSession(c *gin.Context) {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": session})
}

// SignOut clears the session and the player state.
func (h *Handler) SignOut(c *gin.Context) {
	auth.ClearSessionCookie(c, h.cookies)

	ps := sessions.Default(c)
	ps.Clear()
	if err := ps.Save(); err != nil {
		log.Printf("Failed to clear player session: %v", err)
	}

	if c.ContentType() == gin.MIMEJSON {
		success(c)
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}
