package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/poofware/blog-auth-service/internal/models"
	"github.com/poofware/blog-auth-service/internal/services"
)

// AuthService is a testify mock of services.AuthService.
type AuthService struct {
	mock.Mock
}

func (m *AuthService) SignUp(ctx context.Context, in services.SignUpInput) (*services.AuthResult, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(*services.AuthResult)
	return res, args.Error(1)
}

func (m *AuthService) SignIn(ctx context.Context, usernameOrEmail, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, usernameOrEmail, password)
	res, _ := args.Get(0).(*services.AuthResult)
	return res, args.Error(1)
}

func (m *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, *services.TokenClaims, error) {
	args := m.Called(ctx, accessToken)
	u, _ := args.Get(0).(*models.User)
	c, _ := args.Get(1).(*services.TokenClaims)
	return u, c, args.Error(2)
}

func (m *AuthService) Logout(ctx context.Context, accessToken string, claims *services.TokenClaims) error {
	args := m.Called(ctx, accessToken, claims)
	return args.Error(0)
}

func (m *AuthService) ChangePassword(ctx context.Context, user *models.User, in services.ChangePasswordInput) error {
	args := m.Called(ctx, user, in)
	return args.Error(0)
}
