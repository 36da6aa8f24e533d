package service

import (
	"context"
	"errors"
	"testing"

	"github.com/saucier/saucier/internal/auth"
)

func TestUserService_CreateUser(t *testing.T) {
	svc := NewUserService(newMemStore())

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    "Chef@Example.COM",
		Password: "secret-password",
		Name:     "Chef",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if user.ID == "" {
		t.Error("user should get an id")
	}
	if user.Email != "Chef@example.com" {
		t.Errorf("email = %s, want domain lowered only", user.Email)
	}
	if user.PasswordHash == "secret-password" {
		t.Error("password must not be stored in plaintext")
	}

	match, err := auth.VerifySecret("secret-password", user.PasswordHash)
	if err != nil || !match {
		t.Errorf("stored hash should verify the password (match=%v, err=%v)", match, err)
	}
}

func TestUserService_CreateUser_Invalid(t *testing.T) {
	svc := NewUserService(newMemStore())

	tests := []struct {
		name    string
		input   CreateUserInput
		wantErr error
	}{
		{"empty email", CreateUserInput{Email: "", Password: "long-enough"}, ErrInvalidEmail},
		{"malformed email", CreateUserInput{Email: "no-domain@", Password: "long-enough"}, ErrInvalidEmail},
		{"short password", CreateUserInput{Email: "a@b.com", Password: "short"}, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateUser(context.Background(), tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserService_CreateUser_DuplicateEmail(t *testing.T) {
	svc := NewUserService(newMemStore())
	ctx := context.Background()

	input := CreateUserInput{Email: "dup@example.com", Password: "long-enough"}
	if _, err := svc.CreateUser(ctx, input); err != nil {
		t.Fatalf("first CreateUser failed: %v", err)
	}

	if _, err := svc.CreateUser(ctx, input); !errors.Is(err, ErrEmailExists) {
		t.Errorf("error = %v, want ErrEmailExists", err)
	}

	// Same address with differently cased domain collides too.
	input.Email = "dup@EXAMPLE.com"
	if _, err := svc.CreateUser(ctx, input); !errors.Is(err, ErrEmailExists) {
		t.Errorf("error = %v, want ErrEmailExists for case-variant domain", err)
	}
}

func TestUserService_IssueToken(t *testing.T) {
	svc := NewUserService(newMemStore())
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{Email: "login@example.com", Password: "correct-password"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	token, plaintext, err := svc.IssueToken(ctx, "login@EXAMPLE.com", "correct-password")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if token.UserID != user.ID {
		t.Errorf("token user = %s, want %s", token.UserID, user.ID)
	}
	if !auth.ValidTokenFormat(plaintext) {
		t.Errorf("plaintext token has invalid format: %s", plaintext)
	}
	if !token.HasScope("read") || !token.HasScope("write") {
		t.Errorf("token scopes = %v, want read+write", token.Scopes)
	}

	match, err := auth.VerifySecret(plaintext, token.TokenHash)
	if err != nil || !match {
		t.Errorf("stored hash should verify the plaintext (match=%v, err=%v)", match, err)
	}
}

func TestUserService_IssueToken_BadCredentials(t *testing.T) {
	svc := NewUserService(newMemStore())
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "known@example.com", Password: "correct-password"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "known@example.com", "wrong-password"},
		{"unknown email", "nobody@example.com", "correct-password"},
		{"malformed email", "not-an-email", "correct-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.IssueToken(ctx, tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestUserService_UpdateUser_Partial(t *testing.T) {
	svc := NewUserService(newMemStore())
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{Email: "me@example.com", Password: "original-pass", Name: "Before"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	name := "After"
	updated, err := svc.UpdateUser(ctx, user.ID, UpdateUserInput{Name: &name})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	if updated.Name != "After" {
		t.Errorf("name = %s, want After", updated.Name)
	}
	if updated.Email != "me@example.com" {
		t.Errorf("email should be untouched, got %s", updated.Email)
	}

	match, err := auth.VerifySecret("original-pass", updated.PasswordHash)
	if err != nil || !match {
		t.Error("password should be untouched")
	}
}

func TestUserService_UpdateUser_Password(t *testing.T) {
	svc := NewUserService(newMemStore())
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{Email: "pw@example.com", Password: "original-pass"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	newPass := "brand-new-pass"
	updated, err := svc.UpdateUser(ctx, user.ID, UpdateUserInput{Password: &newPass})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	if match, _ := auth.VerifySecret("brand-new-pass", updated.PasswordHash); !match {
		t.Error("new password should verify")
	}
	if match, _ := auth.VerifySecret("original-pass", updated.PasswordHash); match {
		t.Error("old password should no longer verify")
	}

	short := "tiny"
	if _, err := svc.UpdateUser(ctx, user.ID, UpdateUserInput{Password: &short}); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("error = %v, want ErrPasswordTooShort", err)
	}
}

func TestUserService_UpdateUser_NotFound(t *testing.T) {
	svc := NewUserService(newMemStore())

	name := "Ghost"
	if _, err := svc.UpdateUser(context.Background(), "missing", UpdateUserInput{Name: &name}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}
