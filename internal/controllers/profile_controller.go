package controllers

import (
	"errors"
	"net/http"

	"github.com/poofware/blog-auth-service/internal/dtos"
	"github.com/poofware/blog-auth-service/internal/middleware"
	"github.com/poofware/blog-auth-service/internal/services"
	"github.com/poofware/blog-auth-service/internal/utils"
)

// ProfileController serves the signed-in user's own account. Every handler
// runs behind middleware.AuthMiddleware.
type ProfileController struct {
	authService services.AuthService
}

func NewProfileController(authService services.AuthService) *ProfileController {
	return &ProfileController{authService: authService}
}

func (c *ProfileController) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeTokenMissing, "Token is missing!", nil)
		return
	}

	u := identity.User
	utils.RespondWithJSON(w, http.StatusOK, dtos.UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	})
}

func (c *ProfileController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeTokenMissing, "Token is missing!", nil)
		return
	}

	var req dtos.ChangePasswordRequest
	if !decodeAndValidate(w, r, &req, "Missing required fields: 'new_password' or 'password' or 'confirm_new_password'") {
		return
	}

	err := c.authService.ChangePassword(r.Context(), identity.User, services.ChangePasswordInput{
		CurrentPassword:    req.Password,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		var policyErr *utils.PasswordPolicyError
		switch {
		case errors.Is(err, utils.ErrAuthentication):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidCredentials, "Password validation failed", nil, err)
		case errors.As(err, &policyErr):
			utils.RespondErrorList(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid password.", policyErr.Errors)
		case errors.Is(err, utils.ErrPasswordMismatch):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "New password and confirmation do not match.", nil, err)
		case errors.Is(err, utils.ErrPasswordReused):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Password cannot be the same as the current password.", nil, err)
		case errors.Is(err, utils.ErrNotFound):
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "User not found!", nil, err)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to change password", nil, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.ChangePasswordResponse{Message: "Password changed successfully."})
}
