package model

import (
	"slices"
	"time"
)

// Scope constants for token authorization.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// DefaultScopes are granted to tokens issued through the login endpoint.
var DefaultScopes = []string{ScopeRead, ScopeWrite}

// AuthToken represents an issued bearer token. Only the argon2id hash
// is stored; the plaintext is shown once at issuance.
type AuthToken struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TokenHash   string     `json:"-"` // Never serialize
	TokenPrefix string     `json:"token_prefix"`
	Scopes      []string   `json:"scopes"`
	Name        string     `json:"name,omitempty"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsRevoked returns true if the token has been revoked.
func (t *AuthToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// HasScope checks if the token carries a specific scope.
func (t *AuthToken) HasScope(scope string) bool {
	return slices.Contains(t.Scopes, scope)
}

// AuthContext holds the authenticated identity for a request.
// Injected into the request context by the auth middleware; every
// owner-scoped operation reads the owner from here, never from payloads.
type AuthContext struct {
	TokenID     string
	TokenPrefix string
	UserID      string
	Scopes      []string
}

// HasScope checks if the auth context carries a specific scope.
func (a *AuthContext) HasScope(scope string) bool {
	return slices.Contains(a.Scopes, scope)
}
