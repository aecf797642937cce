package apperr

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"conflict", Conflict("dup"), http.StatusConflict},
		{"unauthorized", Unauthorized("nope"), http.StatusUnauthorized},
		{"bad request", BadRequest("bad"), http.StatusBadRequest},
		{"not found", NotFound("gone"), http.StatusNotFound},
		{"forbidden", Forbidden("mine"), http.StatusForbidden},
		{"internal", Internal(errors.New("boom"), "op"), http.StatusInternalServerError},
		{"plain", errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessageHidesInternals(t *testing.T) {
	err := Internal(errors.New("pq: relation \"users\" does not exist"), "get user")
	assert.Equal(t, InternalMessage, PublicMessage(err))
	assert.Equal(t, InternalMessage, PublicMessage(errors.New("raw")))
	assert.Equal(t, "Invalid credentials", PublicMessage(Unauthorized("Invalid credentials")))
}

func TestInternalNilPassthrough(t *testing.T) {
	assert.NoError(t, Internal(nil, "noop"))
}

func TestIs(t *testing.T) {
	assert.True(t, Is(NotFound("x"), CodeNotFound))
	assert.False(t, Is(NotFound("x"), CodeConflict))
	assert.False(t, Is(nil, CodeNotFound))
	AssertCode(t, Conflict("x"), CodeConflict)
}

func TestLogErrorIncludesCodeAndContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LogError(logger, "lookup failed", Internal(errors.New("db down"), "find user", "user_id", "u1"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "lookup failed", entry["msg"])
	assert.Equal(t, CodeInternal, entry["code"])
	ctx, ok := entry["context"].(map[string]any)
	require.True(t, ok, "context missing: %v", entry)
	assert.Equal(t, "u1", ctx["user_id"])
	assert.Equal(t, "find user", ctx["operation"])
}

func TestLogErrorPlain(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LogError(logger, "plain failure", errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
	assert.NotContains(t, entry, "code")
}

func TestToResponse(t *testing.T) {
	status, body := ToResponse(BadRequest("Reset link has expired"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, Response{Error: "bad_request", Message: "Reset link has expired"}, body)

	status, body = ToResponse(errors.New("dial tcp: refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, Response{Error: "internal", Message: InternalMessage}, body)

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"internal","message":"Internal server error"}`, string(raw))
}
