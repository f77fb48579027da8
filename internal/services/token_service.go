package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/poofware/blog-auth-service/internal/config"
	"github.com/poofware/blog-auth-service/internal/models"
	"github.com/poofware/blog-auth-service/internal/utils"
)

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenClaims is the decoded payload of a verified token.
type TokenClaims struct {
	ID        string
	Subject   uuid.UUID
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// UserFinder resolves token subjects.
type UserFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenService issues and verifies HS256-signed access and refresh tokens.
//
// Verify checks, in order: signature, expiry (a token whose exp equals the
// current second is expired), token type and, for access tokens only,
// revocation. Failures wrap utils.ErrTokenInvalid, utils.ErrTokenExpired or
// utils.ErrTokenRevoked.
type TokenService interface {
	IssueAccess(userID uuid.UUID) (string, time.Time, error)
	IssueRefresh(userID uuid.UUID) (string, time.Time, error)
	Verify(ctx context.Context, rawToken string, kind TokenKind) (*TokenClaims, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Revoke(ctx context.Context, rawToken string, expiresAt time.Time) error
}

type TokenServiceOption func(*tokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenServiceOption {
	return func(s *tokenService) { s.now = now }
}

type tokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	registry   RevocationRegistry
	users      UserFinder
	now        func() time.Time
}

func NewTokenService(
	cfg *config.Config,
	registry RevocationRegistry,
	users UserFinder,
	opts ...TokenServiceOption,
) TokenService {
	s := &tokenService{
		secret:     []byte(cfg.JWTSecretKey),
		issuer:     cfg.TokenIssuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		registry:   registry,
		users:      users,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *tokenService) IssueAccess(userID uuid.UUID) (string, time.Time, error) {
	return s.issue(userID, TokenKindAccess, s.accessTTL)
}

func (s *tokenService) IssueRefresh(userID uuid.UUID) (string, time.Time, error) {
	return s.issue(userID, TokenKindRefresh, s.refreshTTL)
}

func (s *tokenService) issue(userID uuid.UUID, kind TokenKind, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := time.Unix(now.Add(ttl).Unix(), 0)

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": userID.String(),
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
		"jti": uuid.NewString(),
		"typ": string(kind),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, expiresAt, nil
}

func (s *tokenService) Verify(ctx context.Context, rawToken string, kind TokenKind) (*TokenClaims, error) {
	token, err := jwt.Parse(
		rawToken,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrTokenInvalid, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", utils.ErrTokenInvalid)
	}
	claims, err := s.decodeClaims(mapClaims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrTokenInvalid, err)
	}
	now := s.now().Truncate(time.Second)
	if !now.Before(claims.ExpiresAt) {
		return nil, utils.ErrTokenExpired
	}

	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token, got %s", utils.ErrTokenInvalid, kind, claims.Kind)
	}

	if kind == TokenKindAccess {
		revoked, err := s.registry.Contains(ctx, rawToken)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, utils.ErrTokenRevoked
		}
	}

	return claims, nil
}

func (s *tokenService) decodeClaims(mc jwt.MapClaims) (*TokenClaims, error) {
	iss, err := mc.GetIssuer()
	if err != nil {
		return nil, err
	}
	if iss != s.issuer {
		return nil, errors.New("invalid token issuer")
	}

	sub, err := mc.GetSubject()
	if err != nil {
		return nil, err
	}
	subject, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, errors.New("missing expiration claim")
	}

	claims := &TokenClaims{
		Subject:   subject,
		ExpiresAt: exp.Time,
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	claims.ID, _ = mc["jti"].(string)
	typ, _ := mc["typ"].(string)
	claims.Kind = TokenKind(typ)

	return claims, nil
}

// Refresh mints a new access token for the subject of a valid refresh token.
// The refresh token itself is neither rotated nor invalidated.
func (s *tokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.Verify(ctx, refreshToken, TokenKindRefresh)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return "", fmt.Errorf("lookup refresh subject: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("refresh subject %s: %w", claims.Subject, utils.ErrNotFound)
	}

	access, _, err := s.IssueAccess(user.ID)
	if err != nil {
		return "", err
	}
	return access, nil
}

func (s *tokenService) Revoke(ctx context.Context, rawToken string, expiresAt time.Time) error {
	return s.registry.Add(ctx, rawToken, expiresAt)
}
