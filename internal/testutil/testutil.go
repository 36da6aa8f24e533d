// Package testutil provides shared helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/saucier/saucier/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 730730

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetUsersSchema drops and recreates the users schema for tests.
// The recipes schema depends on users, so it is dropped first.
func ResetUsersSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := applyMigration(ctx, pool, "000002_recipes.down.sql"); err != nil {
		return err
	}
	if err := applyMigration(ctx, pool, "000001_users.down.sql"); err != nil {
		return err
	}
	if err := applyMigration(ctx, pool, "000001_users.up.sql"); err != nil {
		return err
	}
	return applyMigration(ctx, pool, "000002_recipes.up.sql")
}

// ResetRecipesSchema drops and recreates the recipes schema for tests,
// leaving the users schema in place.
func ResetRecipesSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := applyMigration(ctx, pool, "000002_recipes.down.sql"); err != nil {
		return err
	}
	return applyMigration(ctx, pool, "000002_recipes.up.sql")
}

// applyMigration reads a migration file from migrations/ and executes it.
func applyMigration(ctx context.Context, pool *pgxpool.Pool, name string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	sql, err := os.ReadFile(filepath.Join(root, "migrations", name))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:           UniqueID("user"),
		Email:        email,
		PasswordHash: fmt.Sprintf("hash-%d", now.UnixNano()),
		Name:         "Test User",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestRecipe creates a test recipe owned by the given user.
func NewTestRecipe(t testing.TB, ownerID, title string) *model.Recipe {
	t.Helper()
	now := time.Now().UTC()
	return &model.Recipe{
		ID:          UniqueID("recipe"),
		OwnerID:     ownerID,
		Title:       title,
		TimeMinutes: 15,
		Price:       decimal.NewFromFloat(5.50),
		Description: "A test recipe",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestTag creates a test tag owned by the given user.
func NewTestTag(t testing.TB, ownerID, name string) *model.Tag {
	t.Helper()
	return &model.Tag{
		ID:        UniqueID("tag"),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTestIngredient creates a test ingredient owned by the given user.
func NewTestIngredient(t testing.TB, ownerID, name string) *model.Ingredient {
	t.Helper()
	return &model.Ingredient{
		ID:        UniqueID("ingredient"),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTestAuthToken creates a test auth token with read/write scopes.
func NewTestAuthToken(t testing.TB, userID string) *model.AuthToken {
	t.Helper()
	now := time.Now().UTC()
	return &model.AuthToken{
		ID:          UniqueID("token"),
		UserID:      userID,
		TokenHash:   fmt.Sprintf("hash-%d", now.UnixNano()),
		TokenPrefix: "abc123",
		Scopes:      []string{model.ScopeRead, model.ScopeWrite},
		Name:        "Test Token",
		CreatedAt:   now,
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}
