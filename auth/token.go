package auth

import (
	"errors"
	"fmt"
	"time"

	"memoryvault/core"
	"memoryvault/models"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the authenticated identity carried by a session token.
type Session struct {
	UserID string      `json:"id"`
	Email  string      `json:"email"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
}

// IsOwner reports whether the session may reach the admin region and mutate content.
func (s *Session) IsOwner() bool {
	return s != nil && s.Role == models.RoleOwner
}

// Claims is the JWT payload of a session cookie.
type Claims struct {
	jwt.RegisteredClaims
	Email string      `json:"email"`
	Name  string      `json:"name,omitempty"`
	Role  models.Role `json:"role"`
}

// Session converts claims back into a Session. Unknown roles resolve to owner,
// matching the rule that anything other than viewer is the owner.
func (c *Claims) Session() *Session {
	role := models.RoleOwner
	if c.Role == models.RoleViewer {
		role = models.RoleViewer
	}
	return &Session{UserID: c.Subject, Email: c.Email, Name: c.Name, Role: role}
}

// TokenManager issues and verifies session JWTs.
type TokenManager struct {
	key       []byte
	maxAge    time.Duration
	updateAge time.Duration
	now       func() time.Time
}

// NewTokenManager creates a manager signing with a key derived from secret.
// updateAge <= 0 disables sliding renewal.
func NewTokenManager(secret string, maxAge, updateAge time.Duration) *TokenManager {
	return &TokenManager{
		key:       DeriveKey(secret, PurposeSession),
		maxAge:    maxAge,
		updateAge: updateAge,
		now:       time.Now,
	}
}

// MaxAge is the absolute lifetime of a freshly issued token.
func (m *TokenManager) MaxAge() time.Duration {
	return m.maxAge
}

// Issue signs a token for s, returning it with its expiry.
func (m *TokenManager) Issue(s *Session) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.maxAge)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: s.Email,
		Name:  s.Name,
		Role:  s.Role,
	})

	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, exp, nil
}

// Parse validates signature, algorithm and expiry.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Join(core.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, core.ErrInvalidToken
	}
	return claims, nil
}

// NeedsRenewal reports whether a valid token is old enough to be re-issued.
func (m *TokenManager) NeedsRenewal(c *Claims) bool {
	if m.updateAge <= 0 || c.IssuedAt == nil {
		return false
	}
	return m.now().Sub(c.IssuedAt.Time) >= m.updateAge
}
