// Package model defines domain entities for the application.
package model

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidEmail indicates a missing or malformed email address.
var ErrInvalidEmail = errors.New("invalid email address")

// User represents an account that owns recipes, tags, and ingredients.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	Name         string    `json:"name,omitempty"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeEmail lower-cases the domain portion of an email address.
// The local part is preserved as given. Returns ErrInvalidEmail for
// empty addresses or addresses without a domain.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrInvalidEmail
	}

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", ErrInvalidEmail
	}

	local := email[:at]
	domain := strings.ToLower(email[at+1:])

	return local + "@" + domain, nil
}
