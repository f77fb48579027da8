package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/poofware/blog-auth-service/internal/models"
	"github.com/poofware/blog-auth-service/internal/repositories"
	"github.com/poofware/blog-auth-service/internal/utils"
)

// RevocationRegistry records access tokens invalidated before their natural
// expiry. Implementations are safe for concurrent use, and an Add that has
// returned is visible to every later Contains.
type RevocationRegistry interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
}

// RevocationCleaner is implemented by registries whose expired entries must
// be removed explicitly.
type RevocationCleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// minRevocationTTL keeps an entry around even when the token is already at
// or past its expiry.
const minRevocationTTL = time.Second

// RegistryOption configures the in-process and Redis registries.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	now func() time.Time
}

// WithRegistryClock sets the clock entry lifetimes are measured against. It
// should match the clock the token service issues with.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(o *registryOptions) { o.now = now }
}

func applyRegistryOptions(opts []RegistryOption) registryOptions {
	o := registryOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func revocationTTL(expiresAt, now time.Time) time.Duration {
	ttl := expiresAt.Sub(now)
	if ttl < minRevocationTTL {
		return minRevocationTTL
	}
	return ttl
}

// ---------------------------------------------------------------------
// In-process registry
// ---------------------------------------------------------------------

type memoryRevocationRegistry struct {
	entries *cache.Cache
	now     func() time.Time
}

// NewMemoryRevocationRegistry keeps revoked tokens in process memory until
// their expiry. janitorInterval controls background eviction; zero disables
// it and leaves eviction to Cleanup.
func NewMemoryRevocationRegistry(janitorInterval time.Duration, opts ...RegistryOption) RevocationRegistry {
	o := applyRegistryOptions(opts)
	return &memoryRevocationRegistry{
		entries: cache.New(cache.NoExpiration, janitorInterval),
		now:     o.now,
	}
}

func (r *memoryRevocationRegistry) Add(_ context.Context, token string, expiresAt time.Time) error {
	r.entries.Set(token, expiresAt, revocationTTL(expiresAt, r.now()))
	return nil
}

func (r *memoryRevocationRegistry) Contains(_ context.Context, token string) (bool, error) {
	_, found := r.entries.Get(token)
	return found, nil
}

func (r *memoryRevocationRegistry) Cleanup(_ context.Context) (int64, error) {
	before := r.entries.ItemCount()
	r.entries.DeleteExpired()
	return int64(before - r.entries.ItemCount()), nil
}

// ---------------------------------------------------------------------
// Postgres-backed registry
// ---------------------------------------------------------------------

type postgresRevocationRegistry struct {
	repo repositories.TokenRepository
}

// NewPostgresRevocationRegistry persists revocations in blacklisted_tokens so
// they survive restarts and are shared between replicas. Rows store the
// absolute expiry and are purged against the database clock.
func NewPostgresRevocationRegistry(repo repositories.TokenRepository) RevocationRegistry {
	return &postgresRevocationRegistry{repo: repo}
}

func (r *postgresRevocationRegistry) Add(ctx context.Context, token string, expiresAt time.Time) error {
	entry := &models.BlacklistedToken{TokenHash: utils.HashToken(token), ExpiresAt: expiresAt}
	if err := r.repo.BlacklistToken(ctx, entry); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (r *postgresRevocationRegistry) Contains(ctx context.Context, token string) (bool, error) {
	found, err := r.repo.IsTokenBlacklisted(ctx, utils.HashToken(token))
	if err != nil {
		return false, fmt.Errorf("lookup blacklisted token: %w", err)
	}
	return found, nil
}

func (r *postgresRevocationRegistry) Cleanup(ctx context.Context) (int64, error) {
	return r.repo.CleanupExpiredBlacklistedTokens(ctx)
}

// ---------------------------------------------------------------------
// Redis-backed registry
// ---------------------------------------------------------------------

const DefaultRevocationKeyPrefix = "token:revoked:"

type redisRevocationRegistry struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisRevocationRegistry stores one key per revoked token; Redis expires
// the key together with the token.
func NewRedisRevocationRegistry(client *redis.Client, prefix string, opts ...RegistryOption) RevocationRegistry {
	if prefix == "" {
		prefix = DefaultRevocationKeyPrefix
	}
	o := applyRegistryOptions(opts)
	return &redisRevocationRegistry{client: client, prefix: prefix, now: o.now}
}

func (r *redisRevocationRegistry) key(token string) string {
	return r.prefix + utils.HashToken(token)
}

func (r *redisRevocationRegistry) Add(ctx context.Context, token string, expiresAt time.Time) error {
	if err := r.client.Set(ctx, r.key(token), 1, revocationTTL(expiresAt, r.now())).Err(); err != nil {
		return fmt.Errorf("redis set revoked token: %w", err)
	}
	return nil
}

func (r *redisRevocationRegistry) Contains(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis lookup revoked token: %w", err)
	}
	return n > 0, nil
}
