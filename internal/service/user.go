// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/saucier/saucier/internal/auth"
	"github.com/saucier/saucier/internal/model"
	"github.com/saucier/saucier/internal/repository"
)

// User service errors.
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrEmailExists        = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// UserStore defines the persistence operations the user service needs.
// *repository.Repository satisfies it; tests may substitute an
// in-memory implementation.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	CreateAuthToken(ctx context.Context, token *model.AuthToken) error
}

// UserService handles account management and token issuance.
type UserService struct {
	store UserStore
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// CreateUserInput defines input for registering a user.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
}

// CreateUser registers a new account. The email's domain portion is
// normalized to lower case; an empty or malformed email is rejected
// before anything is written.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	email, err := model.NormalizeEmail(input.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	if len(input.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := auth.HashSecret(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         input.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// IssueToken verifies credentials and issues a new bearer token.
// Returns the token record and its plaintext, which is shown once.
// All credential failures surface as ErrInvalidCredentials.
func (s *UserService) IssueToken(ctx context.Context, email, password string) (*model.AuthToken, string, error) {
	normalized, err := model.NormalizeEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	match, err := auth.VerifySecret(password, user.PasswordHash)
	if err != nil || !match {
		return nil, "", ErrInvalidCredentials
	}

	generated, err := auth.GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	token := &model.AuthToken{
		ID:          ulid.Make().String(),
		UserID:      user.ID,
		TokenHash:   generated.Hash,
		TokenPrefix: generated.Prefix,
		Scopes:      model.DefaultScopes,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateAuthToken(ctx, token); err != nil {
		return nil, "", fmt.Errorf("failed to store token: %w", err)
	}

	return token, generated.Plaintext, nil
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserInput defines input for updating a profile. Nil fields are
// left unchanged.
type UpdateUserInput struct {
	Email    *string
	Password *string
	Name     *string
}

// UpdateUser applies a partial profile update to the user's own
// account. The caller's identity fixes which row is touched; there is
// no way to update another user through this path.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email, err := model.NormalizeEmail(*input.Email)
		if err != nil {
			return nil, ErrInvalidEmail
		}
		user.Email = email
	}

	if input.Password != nil {
		if len(*input.Password) < MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := auth.HashSecret(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if input.Name != nil {
		user.Name = *input.Name
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailExists
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}
