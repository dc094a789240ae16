package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"storefront-backend/internal/domains/user"
	"storefront-backend/internal/shared/middleware"
	"storefront-backend/internal/shared/response"
	"storefront-backend/pkg/logger"
)

// UserHandler serves the auth and profile endpoints
type UserHandler struct {
	service user.Service
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// ========================================
// AUTHENTICATION ENDPOINTS
// ========================================

// Register handles POST /auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	userDTO, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/users/me")
	response.Success(c, http.StatusCreated, "User registered successfully", userDTO)
}

// Login handles POST /auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// The guest session cookie is kept so the client can call /cart/sync next
	response.Success(c, http.StatusOK, "Login successful", res)
}

// Logout handles POST /auth/logout
func (h *UserHandler) Logout(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.service.Logout(c.Request.Context(), *userID); err != nil {
		h.handleError(c, err)
		return
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, "Logout successful", nil)
}

// ForgotPassword handles POST /auth/forgot-password.
// The answer is the same whether or not the email has an account.
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Email sent successfully", nil)
}

// ResetPassword handles POST /auth/reset-password/:token
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), c.Param("token"), req); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Password reset successful", nil)
}

// ========================================
// PROFILE
// ========================================

// GetProfile handles GET /users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), *userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// ========================================
// HELPERS
// ========================================

func (h *UserHandler) handleError(c *gin.Context, err error) {
	var validationErrs validation.Errors

	switch {
	case errors.As(err, &validationErrs):
		response.ErrorResponse(c, http.StatusBadRequest, "Validation failed", validationErrs)

	case errors.Is(err, user.ErrInvalidResetToken):
		response.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)

	case errors.Is(err, user.ErrInvalidCredentials):
		response.ErrorResponse(c, http.StatusUnauthorized, err.Error(), nil)

	case errors.Is(err, user.ErrUserNotFound):
		response.ErrorResponse(c, http.StatusNotFound, err.Error(), nil)

	case errors.Is(err, user.ErrEmailAlreadyExists):
		response.ErrorResponse(c, http.StatusConflict, err.Error(), nil)

	default:
		logger.Error("user request failed", err)
		response.InternalServerError(c, "Internal server error")
	}
}

func (h *UserHandler) bindAndValidate(c *gin.Context, req validation.Validatable) error {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return err
	}
	if err := req.Validate(); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Validation failed", err)
		return err
	}
	return nil
}
