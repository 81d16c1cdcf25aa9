package auth

import "strings"

// Allowlist admits exactly one configured email address.
type Allowlist struct {
	email string
}

// NewAllowlist builds an allowlist for the given address. An empty address admits nobody.
func NewAllowlist(email string) Allowlist {
	return Allowlist{email: strings.TrimSpace(email)}
}

// IsAllowed compares case-insensitively after trimming surrounding whitespace.
func (a Allowlist) IsAllowed(email string) bool {
	if a.email == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(email), a.email)
}
