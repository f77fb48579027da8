package app

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/poofware/blog-auth-service/internal/config"
	"github.com/poofware/blog-auth-service/internal/repositories"
	"github.com/poofware/blog-auth-service/internal/services"
)

const memoryRegistryJanitorInterval = 10 * time.Minute

// NewRevocationRegistry builds the backend named by cfg.RevocationBackend.
func NewRevocationRegistry(
	cfg *config.Config,
	db repositories.DB,
	redisClient *redis.Client,
) (services.RevocationRegistry, error) {
	switch cfg.RevocationBackend {
	case config.RevocationBackendMemory:
		return services.NewMemoryRevocationRegistry(memoryRegistryJanitorInterval), nil
	case config.RevocationBackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres revocation backend needs a database")
		}
		return services.NewPostgresRevocationRegistry(repositories.NewTokenRepository(db)), nil
	case config.RevocationBackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis revocation backend needs a redis client")
		}
		return services.NewRedisRevocationRegistry(redisClient, ""), nil
	default:
		return nil, fmt.Errorf("unknown revocation backend %q", cfg.RevocationBackend)
	}
}
