package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/poofware/blog-auth-service/internal/models"
	"github.com/poofware/blog-auth-service/internal/repositories"
	"github.com/poofware/blog-auth-service/internal/utils"
)

// PasswordHasher is satisfied by *utils.PasswordHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// EmailValidator is satisfied by *utils.EmailValidator.
type EmailValidator interface {
	ValidateEmail(ctx context.Context, email string) bool
}

type SignUpInput struct {
	Username string
	Email    string
	Password string
}

type ChangePasswordInput struct {
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// AuthService orchestrates the account and session flows.
type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error)
	SignIn(ctx context.Context, usernameOrEmail, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Authenticate(ctx context.Context, accessToken string) (*models.User, *TokenClaims, error)
	Logout(ctx context.Context, accessToken string, claims *TokenClaims) error
	ChangePassword(ctx context.Context, user *models.User, in ChangePasswordInput) error
}

type authService struct {
	users          repositories.UserRepository
	tokens         TokenService
	hasher         PasswordHasher
	emailValidator EmailValidator
}

func NewAuthService(
	users repositories.UserRepository,
	tokens TokenService,
	hasher PasswordHasher,
	emailValidator EmailValidator,
) AuthService {
	return &authService{
		users:          users,
		tokens:         tokens,
		hasher:         hasher,
		emailValidator: emailValidator,
	}
}

// SignUp validates the input, creates a "user" account and returns a fresh
// token pair. Validation failures wrap utils.ErrValidation; duplicates wrap
// utils.ErrConflict.
func (s *authService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	if !s.emailValidator.ValidateEmail(ctx, in.Email) {
		return nil, fmt.Errorf("%w: %w", utils.ErrValidation, utils.ErrInvalidEmail)
	}

	if ok, errs := utils.ValidatePassword(in.Password); !ok {
		return nil, &utils.PasswordPolicyError{Errors: errs}
	}

	for _, identifier := range []string{in.Username, in.Email} {
		exists, err := s.users.Exists(ctx, identifier)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, utils.ErrConflict
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	utils.Logger.WithField("user_id", user.ID).Info("User signed up")
	return s.issuePair(user)
}

// SignIn returns utils.ErrNotFound for an unknown identifier and
// utils.ErrAuthentication for a wrong password. No tokens are issued on
// failure.
func (s *authService) SignIn(ctx context.Context, usernameOrEmail, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.ErrNotFound
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		utils.Logger.WithField("user_id", user.ID).Warn("Sign-in rejected: wrong password")
		return nil, utils.ErrAuthentication
	}

	utils.Logger.WithField("user_id", user.ID).Info("User signed in")
	return s.issuePair(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return s.tokens.Refresh(ctx, refreshToken)
}

// Authenticate resolves the user behind an access token.
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*models.User, *TokenClaims, error) {
	if accessToken == "" {
		return nil, nil, utils.ErrTokenMissing
	}

	claims, err := s.tokens.Verify(ctx, accessToken, TokenKindAccess)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, utils.ErrNotFound
	}
	return user, claims, nil
}

// Logout revokes accessToken until its own expiry.
func (s *authService) Logout(ctx context.Context, accessToken string, claims *TokenClaims) error {
	if err := s.tokens.Revoke(ctx, accessToken, claims.ExpiresAt); err != nil {
		utils.Logger.WithError(err).WithField("user_id", claims.Subject).Error("Failed to revoke access token")
		return err
	}
	utils.Logger.WithField("user_id", claims.Subject).Info("User logged out")
	return nil
}

// ChangePassword only refuses a new password equal to the current one;
// earlier passwords may be reused.
func (s *authService) ChangePassword(ctx context.Context, user *models.User, in ChangePasswordInput) error {
	if !s.hasher.Verify(in.CurrentPassword, user.PasswordHash) {
		return utils.ErrAuthentication
	}

	if ok, errs := utils.ValidatePassword(in.NewPassword); !ok {
		return &utils.PasswordPolicyError{Errors: errs}
	}

	if in.NewPassword != in.ConfirmNewPassword {
		return fmt.Errorf("%w: %w", utils.ErrValidation, utils.ErrPasswordMismatch)
	}

	if s.hasher.Verify(in.NewPassword, user.PasswordHash) {
		return fmt.Errorf("%w: %w", utils.ErrValidation, utils.ErrPasswordReused)
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	user.PasswordHash = hash

	utils.Logger.WithField("user_id", user.ID).Info("Password changed")
	return nil
}

func (s *authService) issuePair(user *models.User) (*AuthResult, error) {
	access, _, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to generate access token")
		return nil, err
	}
	refresh, _, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to generate refresh token")
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
