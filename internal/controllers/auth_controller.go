package controllers

import (
	"errors"
	"net/http"

	"github.com/poofware/blog-auth-service/internal/dtos"
	"github.com/poofware/blog-auth-service/internal/middleware"
	"github.com/poofware/blog-auth-service/internal/services"
	"github.com/poofware/blog-auth-service/internal/utils"
)

type AuthController struct {
	authService services.AuthService
}

func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// SignUp handles POST /signup.
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dtos.SignUpRequest
	if !decodeAndValidate(w, r, &req, "Missing required fields: 'username', 'email' or 'password'") {
		return
	}

	result, err := c.authService.SignUp(r.Context(), services.SignUpInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var policyErr *utils.PasswordPolicyError
		switch {
		case errors.As(err, &policyErr):
			utils.RespondErrorList(w, http.StatusBadRequest, utils.ErrCodeValidation, "Password validation failed", policyErr.Errors)
		case errors.Is(err, utils.ErrInvalidEmail):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid email address", nil, err)
		case errors.Is(err, utils.ErrConflict):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeConflict, "User with this email or username already exists", nil, err)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to create user", nil, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.SignUpResponse{
		Message:      "User created successfully",
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// SignIn handles POST /signin.
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dtos.SignInRequest
	if !decodeAndValidate(w, r, &req, "Missing required fields: 'username_or_email' or 'password'") {
		return
	}

	result, err := c.authService.SignIn(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrNotFound):
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "User not found", nil, err)
		case errors.Is(err, utils.ErrAuthentication):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidCredentials, "Password validation failed", nil, err)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to sign in", nil, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.SignInResponse{
		Message:      "Login successful",
		UserID:       result.User.ID.String(),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// Refresh handles POST /refresh.
func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dtos.RefreshTokenRequest
	if !decodeAndValidate(w, r, &req, "Refresh token missing") {
		return
	}

	access, err := c.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrTokenExpired):
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Refresh token expired", nil, err)
		case errors.Is(err, utils.ErrNotFound):
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid refresh token", nil, err)
		case errors.Is(err, utils.ErrTokenInvalid), errors.Is(err, utils.ErrTokenRevoked):
			utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeUnauthorized, "Invalid token", nil, err)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to refresh token", nil, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.RefreshTokenResponse{AccessToken: access})
}

// Logout handles POST /logout. It must run behind middleware.AuthMiddleware.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeTokenMissing, "Token is missing!", nil)
		return
	}

	if err := c.authService.Logout(r.Context(), identity.Token, identity.Claims); err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to logout", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.LogoutResponse{Message: "Successfully logged out"})
}
