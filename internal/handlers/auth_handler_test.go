package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/apperr"
	"expensetracker/internal/logging"
	"expensetracker/internal/middleware"
	"expensetracker/internal/models"
	"expensetracker/internal/services"
)

type stubAuth struct {
	registerErr error
	loginErr    error
	resetErr    error
	valid       bool

	gotEmail  string
	gotLocale string
	gotToken  string
}

var _ AuthService = (*stubAuth)(nil)

func (s *stubAuth) Register(_ context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &models.AuthResponse{AccessToken: "tok", User: models.PublicUser{ID: "u1", Email: req.Email}}, nil
}

func (s *stubAuth) Login(_ context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &models.AuthResponse{AccessToken: "tok", User: models.PublicUser{ID: "u1", Email: req.Email}}, nil
}

func (s *stubAuth) Me(_ context.Context, userID string) (*models.PublicUser, error) {
	return &models.PublicUser{ID: userID, Email: "alice@example.com"}, nil
}

func (s *stubAuth) RequestPasswordReset(_ context.Context, email, locale string) *models.MessageResponse {
	s.gotEmail, s.gotLocale = email, locale
	return &models.MessageResponse{Message: services.MsgResetRequested}
}

func (s *stubAuth) VerifyResetToken(_ context.Context, raw string) bool {
	s.gotToken = raw
	return s.valid
}

func (s *stubAuth) ResetPassword(_ context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error) {
	s.gotToken = req.Token
	if s.resetErr != nil {
		return nil, s.resetErr
	}
	return &models.MessageResponse{Message: services.MsgResetDone}, nil
}

func authRouter(svc AuthService) http.Handler {
	h := NewAuthHandler(svc, logging.Discard())
	r := chi.NewRouter()
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Get("/auth/me", h.Me)
	r.Post("/auth/forgot-password", h.ForgotPassword)
	r.Get("/auth/verify-reset-token/{token}", h.VerifyResetToken)
	r.Post("/auth/reset-password", h.ResetPassword)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperr.Response {
	t.Helper()
	var body apperr.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestRegisterCreated(t *testing.T) {
	w := doJSON(t, authRouter(&stubAuth{}), http.MethodPost, "/auth/register",
		map[string]any{"email": "alice@example.com", "password": "secret123"}, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.AccessToken)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{"bad email", map[string]any{"email": "nope", "password": "secret123"}, "email must be a valid email"},
		{"short password", map[string]any{"email": "a@example.com", "password": "12345"}, "password must be at least 6 characters"},
		{"missing password", map[string]any{"email": "a@example.com"}, "password is required"},
		{"long password", map[string]any{"email": "a@example.com", "password": strings.Repeat("a", 80)}, "password must be at most 72 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, authRouter(&stubAuth{}), http.MethodPost, "/auth/register", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, "bad_request", body.Error)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestRegisterConflict(t *testing.T) {
	svc := &stubAuth{registerErr: apperr.Conflict(services.MsgUserExists)}
	w := doJSON(t, authRouter(svc), http.MethodPost, "/auth/register",
		map[string]any{"email": "alice@example.com", "password": "secret123"}, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperr.Response{Error: "conflict", Message: services.MsgUserExists}, decodeError(t, w))
}

func TestRegisterMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	authRouter(&stubAuth{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decodeError(t, w).Message)
}

func TestLoginUnauthorized(t *testing.T) {
	svc := &stubAuth{loginErr: apperr.Unauthorized(services.MsgInvalidCredentials)}
	w := doJSON(t, authRouter(svc), http.MethodPost, "/auth/login",
		map[string]any{"email": "alice@example.com", "password": "wrong"}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperr.Response{Error: "unauthorized", Message: "Invalid credentials"}, decodeError(t, w))
}

func TestLoginInternalErrorIsGeneric(t *testing.T) {
	svc := &stubAuth{loginErr: apperr.Internal(assert.AnError, "get user by email")}
	w := doJSON(t, authRouter(svc), http.MethodPost, "/auth/login",
		map[string]any{"email": "alice@example.com", "password": "secret123"}, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperr.Response{Error: "internal", Message: apperr.InternalMessage}, decodeError(t, w))
}

func TestMeRequiresCaller(t *testing.T) {
	h := NewAuthHandler(&stubAuth{}, logging.Discard())

	w := httptest.NewRecorder()
	h.Me(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), "u1", "alice@example.com"))
	w = httptest.NewRecorder()
	h.Me(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"u1"`)
}

func TestForgotPasswordUsesAcceptLanguage(t *testing.T) {
	svc := &stubAuth{}
	w := doJSON(t, authRouter(svc), http.MethodPost, "/auth/forgot-password",
		map[string]any{"email": "alice@example.com"}, map[string]string{"Accept-Language": "es-AR,es;q=0.9"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"`+services.MsgResetRequested+`"}`, w.Body.String())
	assert.Equal(t, "alice@example.com", svc.gotEmail)
	assert.Equal(t, services.LocaleSpanish, svc.gotLocale)
}

func TestVerifyResetToken(t *testing.T) {
	svc := &stubAuth{valid: true}
	w := doJSON(t, authRouter(svc), http.MethodGet, "/auth/verify-reset-token/abc123", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true}`, w.Body.String())
	assert.Equal(t, "abc123", svc.gotToken)

	svc.valid = false
	w = doJSON(t, authRouter(svc), http.MethodGet, "/auth/verify-reset-token/zzz", nil, nil)
	assert.JSONEq(t, `{"valid":false}`, w.Body.String())
}

func TestResetPassword(t *testing.T) {
	svc := &stubAuth{}
	w := doJSON(t, authRouter(svc), http.MethodPost, "/auth/reset-password",
		map[string]any{"token": "abc", "password": "newpass1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Password has been reset successfully"}`, w.Body.String())

	svc.resetErr = apperr.BadRequest(services.MsgResetUsed)
	w = doJSON(t, authRouter(svc), http.MethodPost, "/auth/reset-password",
		map[string]any{"token": "abc", "password": "newpass1"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, services.MsgResetUsed, decodeError(t, w).Message)
}
