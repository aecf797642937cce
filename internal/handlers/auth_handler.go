package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"expensetracker/internal/models"
	"expensetracker/internal/services"
)

// AuthService is the account and password-reset surface used by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Me(ctx context.Context, userID string) (*models.PublicUser, error)
	RequestPasswordReset(ctx context.Context, email, locale string) *models.MessageResponse
	VerifyResetToken(ctx context.Context, raw string) bool
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error)
}

type AuthHandler struct {
	svc    AuthService
	logger *slog.Logger
	v      *validator.Validate
}

func NewAuthHandler(svc AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{svc: svc, logger: logger, v: newValidator()}
}

// Register godoc
// @Tags Auth
// @Summary Create an account
// @Accept json
// @Produce json
// @Param body body models.RegisterRequest true "Account"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} apperr.Response
// @Failure 409 {object} apperr.Response
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeAndValidate(r, h.v, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Login godoc
// @Tags Auth
// @Summary Log in with email and password
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} apperr.Response
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeAndValidate(r, h.v, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me godoc
// @Tags Auth
// @Summary Current user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.PublicUser
// @Failure 401 {object} apperr.Response
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	me, err := h.svc.Me(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, me)
}

// ForgotPassword godoc
// @Tags Auth
// @Summary Request a password reset link
// @Description Always answers with the same message whether or not the account exists.
// @Accept json
// @Produce json
// @Param body body models.ForgotPasswordRequest true "Email"
// @Param Accept-Language header string false "en or es"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} apperr.Response
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := decodeAndValidate(r, h.v, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	locale := services.NormalizeLocale(r.Header.Get("Accept-Language"))
	writeJSON(w, http.StatusOK, h.svc.RequestPasswordReset(r.Context(), req.Email, locale))
}

// VerifyResetToken godoc
// @Tags Auth
// @Summary Check whether a reset link can still be used
// @Produce json
// @Param token path string true "Reset token"
// @Success 200 {object} models.VerifyResetTokenResponse
// @Router /api/v1/auth/verify-reset-token/{token} [get]
func (h *AuthHandler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	valid := h.svc.VerifyResetToken(r.Context(), chi.URLParam(r, "token"))
	writeJSON(w, http.StatusOK, models.VerifyResetTokenResponse{Valid: valid})
}

// ResetPassword godoc
// @Tags Auth
// @Summary Set a new password with a reset token
// @Accept json
// @Produce json
// @Param body body models.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} apperr.Response
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := decodeAndValidate(r, h.v, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.svc.ResetPassword(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
