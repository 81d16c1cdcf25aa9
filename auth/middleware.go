package auth

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookieName holds the signed session JWT.
const SessionCookieName = "memoryvault_session"

const sessionContextKey = "memoryvault.session"

// Region classifies a request path for access control.
type Region int

const (
	RegionPublic Region = iota
	RegionLogin
	RegionGeneral
	RegionAdmin
	RegionAPI
)

var publicPrefixes = []string{"/api/auth/", "/static/", "/media/"}

var publicPaths = map[string]bool{
	"/unauthorized": true,
	"/api/health":   true,
	"/metrics":      true,
	"/favicon.ico":  true,
}

// RegionOf returns the access region of path.
func RegionOf(path string) Region {
	switch {
	case path == "/login":
		return RegionLogin
	case publicPaths[path]:
		return RegionPublic
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return RegionPublic
		}
	}
	switch {
	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		return RegionAdmin
	case path == "/api" || strings.HasPrefix(path, "/api/"):
		return RegionAPI
	default:
		return RegionGeneral
	}
}

// CookieOptions controls how the session cookie is written.
type CookieOptions struct {
	Secure bool
}

// LoadSession parses the session cookie, stores the session in the gin context
// and re-issues tokens that passed the update age. Invalid cookies are cleared.
func LoadSession(tokens *TokenManager, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			ClearSessionCookie(c, opts)
			c.Next()
			return
		}

		session := claims.Session()
		if tokens.NeedsRenewal(claims) {
			if signed, exp, err := tokens.Issue(session); err == nil {
				SetSessionCookie(c, signed, exp, opts)
			}
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// SessionFromContext returns the session loaded by LoadSession.
func SessionFromContext(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok && s != nil
}

// PageGuard applies the page access rules. Denials are always 302 redirects;
// API paths pass through to the API guards.
func PageGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		session, authenticated := SessionFromContext(c)

		switch RegionOf(path) {
		case RegionPublic, RegionAPI:
			c.Next()
			return
		case RegionLogin:
			if authenticated {
				redirect(c, SafeCallback(c.Query("callbackUrl")))
				return
			}
			c.Next()
			return
		}

		if !authenticated {
			redirect(c, LoginURL(c.Request.URL.RequestURI()))
			return
		}
		if RegionOf(path) == RegionAdmin && !session.IsOwner() {
			redirect(c, "/")
			return
		}
		c.Next()
	}
}

// RequireSessionAPI rejects API requests without a valid session.
func RequireSessionAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := SessionFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireOwnerAPI rejects API requests whose session is not the owner's.
func RequireOwnerAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := SessionFromContext(c); !ok || !s.IsOwner() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// LoginURL builds the login redirect that returns to target afterwards.
func LoginURL(target string) string {
	if target == "" || target == "/" {
		return "/login"
	}
	return "/login?callbackUrl=" + url.QueryEscape(target)
}

// SafeCallback returns target if it is a same-origin path, otherwise "/".
func SafeCallback(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return target
}

// SetSessionCookie writes the session token cookie.
func SetSessionCookie(c *gin.Context, token string, expires time.Time, opts CookieOptions) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", opts.Secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", opts.Secure, true)
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}
