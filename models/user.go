package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the authorization level carried by an identity and its sessions.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleViewer
}

// User is an identity created on first successful magic-link verification.
type User struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	Name          string     `gorm:"not null;default:''" json:"name"`
	Email         string     `gorm:"uniqueIndex;not null;size:320" json:"email"`
	EmailVerified *time.Time `json:"emailVerified"`
	Role          Role       `gorm:"not null;default:'viewer';size:16" json:"role"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// BeforeCreate GORM hook - assign ID and normalize email
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// VerificationToken is a pending magic link. Only the SHA-256 of the token is stored.
type VerificationToken struct {
	Identifier string    `gorm:"not null;index;size:320"`
	TokenHash  string    `gorm:"primaryKey;size:64"`
	Expires    time.Time `gorm:"not null"`
	CreatedAt  time.Time
}
