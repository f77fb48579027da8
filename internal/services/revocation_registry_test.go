package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/poofware/blog-auth-service/internal/mocks"
	"github.com/poofware/blog-auth-service/internal/models"
	"github.com/poofware/blog-auth-service/internal/services"
	"github.com/poofware/blog-auth-service/internal/utils"
)

func TestMemoryRevocationRegistry_AddContains(t *testing.T) {
	ctx := context.Background()
	reg := services.NewMemoryRevocationRegistry(0)

	found, err := reg.Contains(ctx, "tok-a")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, reg.Add(ctx, "tok-a", time.Now().Add(time.Hour)))

	found, err = reg.Contains(ctx, "tok-a")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = reg.Contains(ctx, "tok-b")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryRevocationRegistry_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	reg := services.NewMemoryRevocationRegistry(0)
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok := fmt.Sprintf("tok-%d", i)
			assert.NoError(t, reg.Add(ctx, tok, exp))
			found, err := reg.Contains(ctx, tok)
			assert.NoError(t, err)
			assert.True(t, found, "an Add that returned must be visible")
		}(i)
	}
	wg.Wait()

	for i := 0; i < 64; i++ {
		found, err := reg.Contains(ctx, fmt.Sprintf("tok-%d", i))
		require.NoError(t, err)
		assert.True(t, found)
	}
}

func TestMemoryRevocationRegistry_Cleanup(t *testing.T) {
	ctx := context.Background()
	reg := services.NewMemoryRevocationRegistry(0)

	require.NoError(t, reg.Add(ctx, "stale", time.Now().Add(-time.Hour)))
	require.NoError(t, reg.Add(ctx, "fresh", time.Now().Add(time.Hour)))

	// Already-expired tokens are still held for the minimum TTL.
	found, err := reg.Contains(ctx, "stale")
	require.NoError(t, err)
	assert.True(t, found)

	time.Sleep(1100 * time.Millisecond)

	cleaner, ok := reg.(services.RevocationCleaner)
	require.True(t, ok)
	removed, err := cleaner.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	found, err = reg.Contains(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, found)
	found, err = reg.Contains(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMemoryRevocationRegistry_UsesInjectedClock(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Now().Add(-365 * 24 * time.Hour)}
	reg := services.NewMemoryRevocationRegistry(0, services.WithRegistryClock(clock.Now))

	// Long expired by the wall clock, one hour out by the injected one.
	require.NoError(t, reg.Add(ctx, "tok", clock.Now().Add(time.Hour)))

	time.Sleep(1100 * time.Millisecond)

	removed, err := reg.(services.RevocationCleaner).Cleanup(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	found, err := reg.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRedisRevocationRegistry_UsesInjectedClock(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := &testClock{now: time.Now().Add(24 * time.Hour)}
	reg := services.NewRedisRevocationRegistry(client, "", services.WithRegistryClock(clock.Now))

	// By the wall clock this token has a day left; by the injected clock ten minutes.
	require.NoError(t, reg.Add(ctx, "raw-token", clock.Now().Add(10*time.Minute)))

	ttl := mr.TTL(services.DefaultRevocationKeyPrefix + utils.HashToken("raw-token"))
	assert.Greater(t, ttl, 9*time.Minute)
	assert.LessOrEqual(t, ttl, 10*time.Minute)
}

func TestRedisRevocationRegistry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reg := services.NewRedisRevocationRegistry(client, "")

	require.NoError(t, reg.Add(ctx, "raw-token", time.Now().Add(30*time.Minute)))

	key := services.DefaultRevocationKeyPrefix + utils.HashToken("raw-token")
	assert.True(t, mr.Exists(key), "key is the token hash, not the raw token")
	assert.False(t, mr.Exists(services.DefaultRevocationKeyPrefix+"raw-token"))
	ttl := mr.TTL(key)
	assert.Greater(t, ttl, 29*time.Minute)
	assert.LessOrEqual(t, ttl, 30*time.Minute)

	found, err := reg.Contains(ctx, "raw-token")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = reg.Contains(ctx, "other-token")
	require.NoError(t, err)
	assert.False(t, found)

	mr.FastForward(31 * time.Minute)
	found, err = reg.Contains(ctx, "raw-token")
	require.NoError(t, err)
	assert.False(t, found, "entry expires with the token")

	_, isCleaner := reg.(services.RevocationCleaner)
	assert.False(t, isCleaner)
}

func TestRedisRevocationRegistry_ConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	reg := services.NewRedisRevocationRegistry(client, "custom:")

	mr.Close()

	_, err := reg.Contains(context.Background(), "raw-token")
	assert.Error(t, err)
}

func TestPostgresRevocationRegistry(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TokenRepository{}
	reg := services.NewPostgresRevocationRegistry(repo)
	exp := time.Now().Add(time.Hour)
	hash := utils.HashToken("raw-token")

	repo.On("BlacklistToken", mock.Anything, mock.MatchedBy(func(e *models.BlacklistedToken) bool {
		return e.TokenHash == hash && e.ExpiresAt.Equal(exp)
	})).Return(nil).Once()
	repo.On("IsTokenBlacklisted", mock.Anything, hash).Return(true, nil).Once()
	repo.On("IsTokenBlacklisted", mock.Anything, utils.HashToken("other")).Return(false, nil).Once()
	repo.On("CleanupExpiredBlacklistedTokens", mock.Anything).Return(int64(3), nil).Once()

	require.NoError(t, reg.Add(ctx, "raw-token", exp))

	found, err := reg.Contains(ctx, "raw-token")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = reg.Contains(ctx, "other")
	require.NoError(t, err)
	assert.False(t, found)

	removed, err := reg.(services.RevocationCleaner).Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	repo.AssertExpectations(t)
}

func TestPostgresRevocationRegistry_Errors(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TokenRepository{}
	reg := services.NewPostgresRevocationRegistry(repo)
	dbErr := errors.New("db down")

	repo.On("BlacklistToken", mock.Anything, mock.Anything).Return(dbErr)
	repo.On("IsTokenBlacklisted", mock.Anything, mock.Anything).Return(false, dbErr)

	assert.ErrorIs(t, reg.Add(ctx, "tok", time.Now().Add(time.Hour)), dbErr)
	_, err := reg.Contains(ctx, "tok")
	assert.ErrorIs(t, err, dbErr)
}
