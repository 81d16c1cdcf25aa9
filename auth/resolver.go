package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"memoryvault/core"
	"memoryvault/models"

	"gorm.io/gorm"
)

// MagicLinkSender delivers a sign-in link to an email address.
type MagicLinkSender interface {
	SendMagicLink(ctx context.Context, to, link string) error
}

// ErrDelivery is returned when the sign-in email could not be handed off.
var ErrDelivery = errors.New("could not send sign-in email")

// Resolver turns allowlisted email addresses into sessions via single-use magic links.
type Resolver struct {
	db        *gorm.DB
	allowlist Allowlist
	sender    MagicLinkSender
	tokens    *TokenManager
	baseURL   string
	linkTTL   time.Duration
	now       func() time.Time
}

// ResolverConfig groups Resolver dependencies.
type ResolverConfig struct {
	DB        *gorm.DB
	Allowlist Allowlist
	Sender    MagicLinkSender
	Tokens    *TokenManager
	BaseURL   string
	LinkTTL   time.Duration
}

func NewResolver(cfg ResolverConfig) *Resolver {
	ttl := cfg.LinkTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Resolver{
		db:        cfg.DB,
		allowlist: cfg.Allowlist,
		sender:    cfg.Sender,
		tokens:    cfg.Tokens,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		linkTTL:   ttl,
		now:       time.Now,
	}
}

// Tokens exposes the session token manager.
func (r *Resolver) Tokens() *TokenManager {
	return r.tokens
}

// RequestSignIn creates a magic link for email and sends it.
// Non-allowlisted addresses get ErrAccessDenied and nothing is stored.
func (r *Resolver) RequestSignIn(ctx context.Context, email, callbackURL string) error {
	link, err := r.IssueLink(ctx, email, callbackURL)
	if err != nil {
		return err
	}

	if err := r.sender.SendMagicLink(ctx, normalizeEmail(email), link); err != nil {
		log.Printf("Failed to send magic link: %v", err)
		core.LogErrorWithContext(core.SourceMail, "failed to send magic link", err.Error(), map[string]interface{}{
			"to": normalizeEmail(email),
		})
		return ErrDelivery
	}
	return nil
}

// IssueLink stores a fresh verification token and returns the callback URL that consumes it.
func (r *Resolver) IssueLink(ctx context.Context, email, callbackURL string) (string, error) {
	if !r.allowlist.IsAllowed(email) {
		return "", core.ErrAccessDenied
	}
	email = normalizeEmail(email)

	token, err := randomToken()
	if err != nil {
		return "", err
	}

	vt := models.VerificationToken{
		Identifier: email,
		TokenHash:  hashToken(token),
		Expires:    r.now().Add(r.linkTTL),
	}
	if err := r.db.WithContext(ctx).Create(&vt).Error; err != nil {
		return "", fmt.Errorf("failed to store verification token: %w", err)
	}

	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	q.Set("callbackUrl", SafeCallback(callbackURL))
	return r.baseURL + "/api/auth/callback/email?" + q.Encode(), nil
}

// Verify consumes token and returns the session for email, creating the identity
// on first sign-in.
func (r *Resolver) Verify(ctx context.Context, email, token string) (*Session, error) {
	if !r.allowlist.IsAllowed(email) {
		return nil, core.ErrAccessDenied
	}
	email = normalizeEmail(email)
	if token == "" {
		return nil, core.ErrInvalidToken
	}

	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vt models.VerificationToken
		if err := tx.Where("token_hash = ? AND identifier = ?", hashToken(token), email).First(&vt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.ErrInvalidToken
			}
			return err
		}
		// a concurrent verification may have consumed the row since the lookup
		res := tx.Where("token_hash = ?", vt.TokenHash).Delete(&models.VerificationToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return core.ErrInvalidToken
		}
		if !vt.Expires.After(r.now()) {
			return errExpiredToken
		}

		now := r.now()
		err := tx.Where("email = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{Email: email, Role: models.RoleOwner, EmailVerified: &now}
			return tx.Create(&user).Error
		case err != nil:
			return err
		default:
			return tx.Model(&user).Update("email_verified", now).Error
		}
	})
	if errors.Is(err, errExpiredToken) {
		// the consumed row is committed only on success, so drop it separately
		r.db.WithContext(ctx).Where("token_hash = ?", hashToken(token)).Delete(&models.VerificationToken{})
		return nil, core.ErrInvalidToken
	}
	if err != nil {
		if errors.Is(err, core.ErrInvalidToken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to verify sign-in: %w", err)
	}

	return sessionFor(&user), nil
}

// PurgeExpiredTokens deletes verification tokens past their expiry.
func (r *Resolver) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires <= ?", r.now()).Delete(&models.VerificationToken{})
	return res.RowsAffected, res.Error
}

var errExpiredToken = errors.New("verification token expired")

func sessionFor(u *models.User) *Session {
	role := models.RoleOwner
	if u.Role == models.RoleViewer {
		role = models.RoleViewer
	}
	return &Session{UserID: u.ID, Email: u.Email, Name: u.Name, Role: role}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
