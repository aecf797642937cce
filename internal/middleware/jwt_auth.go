package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"expensetracker/internal/apperr"
	"expensetracker/internal/services"
)

type ctxKey string

const (
	CtxUserID ctxKey = "user_id"
	CtxEmail  ctxKey = "email"
)

// TokenParser verifies a bearer credential.
type TokenParser interface {
	Parse(token string) (*services.SessionClaims, error)
}

func writeJSONError(w http.ResponseWriter, err error) {
	status, body := apperr.ToResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// JWTAuth rejects requests without a valid bearer token and stores the
// caller's id and email in the request context.
func JWTAuth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, apperr.Unauthorized("Missing Authorization header"))
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				writeJSONError(w, apperr.Unauthorized("Invalid Authorization header"))
				return
			}

			claims, err := parser.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				writeJSONError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID, claims.Email)))
		})
	}
}

func WithUser(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, CtxUserID, userID)
	return context.WithValue(ctx, CtxEmail, email)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxUserID).(string)
	return id, ok && id != ""
}

func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(CtxEmail).(string)
	return email
}
