package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"memoryvault/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGuardedRouter(tokens *TokenManager) *gin.Engine {
	r := gin.New()
	r.Use(LoadSession(tokens, CookieOptions{}), PageGuard())
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/", ok)
	r.GET("/login", ok)
	r.GET("/admin", ok)
	r.GET("/admin/memories", ok)
	r.GET("/unauthorized", ok)
	api := r.Group("/api")
	api.GET("/memories", RequireSessionAPI(), ok)
	api.POST("/memories", RequireOwnerAPI(), ok)
	return r
}

func sessionCookie(t *testing.T, tokens *TokenManager, role models.Role) *http.Cookie {
	t.Helper()
	signed, _, err := tokens.Issue(&Session{UserID: "u1", Email: "love@example.com", Role: role})
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookieName, Value: signed}
}

func do(r *gin.Engine, method, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegionOf(t *testing.T) {
	tests := map[string]Region{
		"/login":                   RegionLogin,
		"/unauthorized":            RegionPublic,
		"/api/auth/callback/email": RegionPublic,
		"/static/app.css":          RegionPublic,
		"/media/song.mp3":          RegionPublic,
		"/api/health":              RegionPublic,
		"/spotify/callback":        RegionGeneral,
		"/admin":                   RegionAdmin,
		"/admin/reasons":           RegionAdmin,
		"/administrator":           RegionGeneral,
		"/api/memories":            RegionAPI,
		"/":                        RegionGeneral,
	}
	for path, want := range tests {
		assert.Equal(t, want, RegionOf(path), path)
	}
}

func TestPageGuard_Unauthenticated(t *testing.T) {
	r := newGuardedRouter(NewTokenManager("s", time.Hour, 0))

	w := do(r, http.MethodGet, "/admin/memories?tab=1", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fadmin%2Fmemories%3Ftab%3D1", w.Header().Get("Location"))

	w = do(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	for _, path := range []string{"/login", "/unauthorized"} {
		w = do(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestPageGuard_ViewerCannotReachAdmin(t *testing.T) {
	tokens := NewTokenManager("s", time.Hour, 0)
	r := newGuardedRouter(tokens)
	viewer := sessionCookie(t, tokens, models.RoleViewer)

	for _, path := range []string{"/admin", "/admin/memories"} {
		w := do(r, http.MethodGet, path, viewer)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.NotContains(t, w.Body.String(), "ok")
	}

	w := do(r, http.MethodGet, "/", viewer)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPageGuard_OwnerReachesAdmin(t *testing.T) {
	tokens := NewTokenManager("s", time.Hour, 0)
	r := newGuardedRouter(tokens)

	w := do(r, http.MethodGet, "/admin", sessionCookie(t, tokens, models.RoleOwner))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPageGuard_LoginRedirectsAuthenticated(t *testing.T) {
	tokens := NewTokenManager("s", time.Hour, 0)
	r := newGuardedRouter(tokens)
	owner := sessionCookie(t, tokens, models.RoleOwner)

	w := do(r, http.MethodGet, "/login?callbackUrl=%2Fadmin", owner)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	w = do(r, http.MethodGet, "/login?callbackUrl=https%3A%2F%2Fevil.example", owner)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestAPIGuards(t *testing.T) {
	tokens := NewTokenManager("s", time.Hour, 0)
	r := newGuardedRouter(tokens)

	w := do(r, http.MethodGet, "/api/memories", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	viewer := sessionCookie(t, tokens, models.RoleViewer)
	w = do(r, http.MethodGet, "/api/memories", viewer)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/memories", viewer)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/memories", sessionCookie(t, tokens, models.RoleOwner))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoadSession_InvalidCookieCleared(t *testing.T) {
	r := newGuardedRouter(NewTokenManager("s", time.Hour, 0))

	w := do(r, http.MethodGet, "/", &http.Cookie{Name: SessionCookieName, Value: "tampered"})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), SessionCookieName+"=;")
}

func TestLoadSession_RenewsOldTokens(t *testing.T) {
	tokens := NewTokenManager("s", 30*24*time.Hour, time.Hour)
	issuedAt := time.Now().Add(-2 * time.Hour)
	tokens.now = func() time.Time { return issuedAt }
	cookie := sessionCookie(t, tokens, models.RoleOwner)
	tokens.now = time.Now

	r := newGuardedRouter(tokens)
	w := do(r, http.MethodGet, "/", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), SessionCookieName+"=")
	assert.NotContains(t, w.Header().Get("Set-Cookie"), cookie.Value)
}

func TestSafeCallback(t *testing.T) {
	tests := map[string]string{
		"":                     "/",
		"/":                    "/",
		"/admin?tab=reasons":   "/admin?tab=reasons",
		"//evil.example":       "/",
		"https://evil.example": "/",
		"/\\evil.example":      "/",
		"admin":                "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeCallback(in), in)
	}
}
