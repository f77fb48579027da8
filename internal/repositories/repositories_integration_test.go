//go:build integration

package repositories_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poofware/blog-auth-service/internal/app"
	"github.com/poofware/blog-auth-service/internal/models"
	"github.com/poofware/blog-auth-service/internal/repositories"
	"github.com/poofware/blog-auth-service/internal/utils"
)

// testPool connects to TEST_DB_URL and applies the migrations. Tests are
// skipped when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DB_URL")
	if dbURL == "" {
		t.Skip("TEST_DB_URL not set")
	}

	ctx := context.Background()
	require.NoError(t, app.RunMigrations(ctx, dbURL))

	pool, err := pgxpool.Connect(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func uniqueUser() *models.User {
	suffix := uuid.NewString()[:8]
	return &models.User{
		Username:     "user_" + suffix,
		Email:        "user_" + suffix + "@example.com",
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderpl",
	}
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	pool := testPool(t)
	repo := repositories.NewUserRepository(pool)
	ctx := context.Background()

	u := uniqueUser()
	require.NoError(t, repo.Create(ctx, u))
	t.Cleanup(func() { _, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, u.ID) })

	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.False(t, u.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, u.Username, byID.Username)
	assert.Equal(t, u.PasswordHash, byID.PasswordHash)

	byName, err := repo.GetByUsernameOrEmail(ctx, u.Username)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := repo.GetByUsernameOrEmail(ctx, u.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	exists, err := repo.Exists(ctx, u.Email)
	require.NoError(t, err)
	assert.True(t, exists)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	exists, err = repo.Exists(ctx, "nobody-"+uuid.NewString())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_DuplicateIsConflict(t *testing.T) {
	pool := testPool(t)
	repo := repositories.NewUserRepository(pool)
	ctx := context.Background()

	u := uniqueUser()
	require.NoError(t, repo.Create(ctx, u))
	t.Cleanup(func() { _, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, u.ID) })

	dupName := uniqueUser()
	dupName.Username = u.Username
	assert.ErrorIs(t, repo.Create(ctx, dupName), utils.ErrConflict)

	dupEmail := uniqueUser()
	dupEmail.Email = u.Email
	assert.ErrorIs(t, repo.Create(ctx, dupEmail), utils.ErrConflict)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	pool := testPool(t)
	repo := repositories.NewUserRepository(pool)
	ctx := context.Background()

	u := uniqueUser()
	require.NoError(t, repo.Create(ctx, u))
	t.Cleanup(func() { _, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, u.ID) })

	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "new-hash"))
	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, uuid.New(), "x"), utils.ErrNotFound)
}

func TestTokenRepository_BlacklistLifecycle(t *testing.T) {
	pool := testPool(t)
	repo := repositories.NewTokenRepository(pool)
	ctx := context.Background()

	live := utils.HashToken("live-" + uuid.NewString())
	stale := utils.HashToken("stale-" + uuid.NewString())
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM blacklisted_tokens WHERE token_hash = ANY($1)`, []string{live, stale})
	})

	entry := &models.BlacklistedToken{TokenHash: live, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.BlacklistToken(ctx, entry))
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, repo.BlacklistToken(ctx, &models.BlacklistedToken{TokenHash: live, ExpiresAt: time.Now().Add(time.Hour)}), "idempotent")
	require.NoError(t, repo.BlacklistToken(ctx, &models.BlacklistedToken{TokenHash: stale, ExpiresAt: time.Now().Add(-time.Hour)}))

	found, err := repo.IsTokenBlacklisted(ctx, live)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.IsTokenBlacklisted(ctx, stale)
	require.NoError(t, err)
	assert.False(t, found, "expired rows no longer count")

	removed, err := repo.CleanupExpiredBlacklistedTokens(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))

	found, err = repo.IsTokenBlacklisted(ctx, live)
	require.NoError(t, err)
	assert.True(t, found)
}
