// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/saucier/saucier/internal/model"
)

// RegisterRequest represents the request body for registering a user.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"max=255"`
}

// TokenRequest represents the request body for issuing a token.
type TokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest represents the request body for updating a profile.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
}

// UserResponse represents a user in API responses. The password hash
// never leaves the server.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenResponse carries a freshly issued bearer token. The plaintext
// token appears here once and is never retrievable again.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"token_id"`
	Scopes    []string  `json:"scopes"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToTokenResponse converts an issued token and its plaintext to a
// TokenResponse DTO.
func ToTokenResponse(token *model.AuthToken, plaintext string) *TokenResponse {
	return &TokenResponse{
		Token:     plaintext,
		TokenID:   token.ID,
		Scopes:    token.Scopes,
		CreatedAt: token.CreatedAt,
	}
}
