package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/poofware/blog-auth-service/internal/models"
	"github.com/poofware/blog-auth-service/internal/services"
	"github.com/poofware/blog-auth-service/internal/utils"
)

type contextKey string

const ContextKeyIdentity = contextKey("identity")

// Identity is what a protected handler learns about its caller.
type Identity struct {
	User   *models.User
	Token  string
	Claims *services.TokenClaims
}

// Authenticator resolves the caller of a request or returns a rejection
// wrapping one of the utils token errors or utils.ErrNotFound.
type Authenticator interface {
	Authenticate(r *http.Request) (*Identity, error)
}

// TokenAuthenticator is satisfied by services.AuthService.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, *services.TokenClaims, error)
}

type bearerAuthenticator struct {
	tokens TokenAuthenticator
}

// NewBearerAuthenticator reads the access token from
// "Authorization: Bearer <token>".
func NewBearerAuthenticator(tokens TokenAuthenticator) Authenticator {
	return &bearerAuthenticator{tokens: tokens}
}

func (a *bearerAuthenticator) Authenticate(r *http.Request) (*Identity, error) {
	raw, err := extractBearerToken(r)
	if err != nil {
		return nil, err
	}
	user, claims, err := a.tokens.Authenticate(r.Context(), raw)
	if err != nil {
		return nil, err
	}
	return &Identity{User: user, Token: raw, Claims: claims}, nil
}

func extractBearerToken(r *http.Request) (string, error) {
	fields := strings.Fields(r.Header.Get("Authorization"))
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", utils.ErrTokenMissing
	}
	return fields[1], nil
}

// AuthMiddleware rejects requests the Authenticator refuses and stores the
// Identity in the request context otherwise. Token problems answer 403 and an
// unknown subject answers 404.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := auth.Authenticate(r)
			if err != nil {
				respondAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrTokenMissing):
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeTokenMissing, "Token is missing!", nil, err)
	case errors.Is(err, utils.ErrTokenExpired):
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeTokenExpired, "Token has expired!", nil, err)
	case errors.Is(err, utils.ErrTokenRevoked):
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeTokenRevoked, "Token has been blacklisted!", nil, err)
	case errors.Is(err, utils.ErrTokenInvalid):
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeUnauthorized, "Token is invalid!", nil, err)
	case errors.Is(err, utils.ErrNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "User not found!", nil, err)
	default:
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}

// IdentityFromContext returns the Identity stored by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(ContextKeyIdentity).(*Identity)
	return identity, ok && identity != nil
}
