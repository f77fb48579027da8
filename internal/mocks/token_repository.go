package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/poofware/blog-auth-service/internal/models"
)

// TokenRepository is a testify mock of repositories.TokenRepository.
type TokenRepository struct {
	mock.Mock
}

func (m *TokenRepository) BlacklistToken(ctx context.Context, token *models.BlacklistedToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *TokenRepository) IsTokenBlacklisted(ctx context.Context, tokenHash string) (bool, error) {
	args := m.Called(ctx, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *TokenRepository) CleanupExpiredBlacklistedTokens(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}
