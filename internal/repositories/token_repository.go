package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/blog-auth-service/internal/models"
)

// TokenRepository persists revoked access tokens. Tokens are identified by
// their hash, never the raw string.
type TokenRepository interface {
	BlacklistToken(ctx context.Context, token *models.BlacklistedToken) error
	IsTokenBlacklisted(ctx context.Context, tokenHash string) (bool, error)
	CleanupExpiredBlacklistedTokens(ctx context.Context) (int64, error)
}

type tokenRepository struct {
	db DB
}

func NewTokenRepository(db DB) TokenRepository {
	return &tokenRepository{db: db}
}

// BlacklistToken is idempotent: revoking the same token twice keeps one row.
// A missing ID is generated and CreatedAt is filled from the database.
func (r *tokenRepository) BlacklistToken(ctx context.Context, token *models.BlacklistedToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	query := `
		INSERT INTO blacklisted_tokens (id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (token_hash) DO NOTHING
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, token.ID, token.TokenHash, token.ExpiresAt).Scan(&token.CreatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("insert blacklisted token: %w", err)
	}
	return nil
}

func (r *tokenRepository) IsTokenBlacklisted(ctx context.Context, tokenHash string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blacklisted_tokens
			WHERE token_hash = $1 AND expires_at > NOW()
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(&exists)
	return exists, err
}

func (r *tokenRepository) CleanupExpiredBlacklistedTokens(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM blacklisted_tokens WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
