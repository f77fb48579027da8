package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgconn"

	"github.com/poofware/blog-auth-service/internal/utils"
)

// One retry on transient network errors (EOF, closed connection).
const cleanupRetryDelay = 3 * time.Second

// TokenCleanupService drops revocation entries whose tokens have expired.
type TokenCleanupService interface {
	CleanupDaily(ctx context.Context) error
}

type tokenCleanupService struct {
	cleaner    RevocationCleaner
	retryDelay time.Duration
}

// NewTokenCleanupService returns a service for registry, or a no-op service
// when the registry expires entries on its own.
func NewTokenCleanupService(registry RevocationRegistry) TokenCleanupService {
	cleaner, _ := registry.(RevocationCleaner)
	return &tokenCleanupService{cleaner: cleaner, retryDelay: cleanupRetryDelay}
}

func isTransient(err error) bool {
	return errors.Is(err, io.EOF) || pgconn.SafeToRetry(err) ||
		strings.Contains(err.Error(), "connection was closed")
}

func (s *tokenCleanupService) runWithRetry(ctx context.Context) (int64, error) {
	n, err := s.cleaner.Cleanup(ctx)
	if err != nil && isTransient(err) {
		utils.Logger.WithError(err).Warn("token cleanup hit transient DB error; retrying once")
		select {
		case <-time.After(s.retryDelay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
		return s.cleaner.Cleanup(ctx)
	}
	return n, err
}

func (s *tokenCleanupService) CleanupDaily(ctx context.Context) error {
	if s.cleaner == nil {
		utils.Logger.Debug("Revocation registry expires entries itself; nothing to clean up")
		return nil
	}

	removed, err := s.runWithRetry(ctx)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to cleanup expired revoked tokens")
		return err
	}

	utils.Logger.WithField("removed", removed).Info("Daily revoked-token cleanup completed successfully.")
	return nil
}
