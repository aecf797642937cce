// Package apperr defines the coded errors shared by services, repositories and handlers.
package apperr

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

const (
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeBadRequest   = "BAD_REQUEST"
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "INTERNAL"
)

// InternalMessage is what callers see for any uncoded or internal failure.
const InternalMessage = "Internal server error"

var statusByCode = map[string]int{
	CodeConflict:     http.StatusConflict,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeBadRequest:   http.StatusBadRequest,
	CodeNotFound:     http.StatusNotFound,
	CodeForbidden:    http.StatusForbidden,
	CodeInternal:     http.StatusInternalServerError,
}

func Conflict(message string) error {
	return oops.Code(CodeConflict).Public(message).Errorf("%s", message)
}

func Unauthorized(message string) error {
	return oops.Code(CodeUnauthorized).Public(message).Errorf("%s", message)
}

func BadRequest(message string) error {
	return oops.Code(CodeBadRequest).Public(message).Errorf("%s", message)
}

func NotFound(message string) error {
	return oops.Code(CodeNotFound).Public(message).Errorf("%s", message)
}

func Forbidden(message string) error {
	return oops.Code(CodeForbidden).Public(message).Errorf("%s", message)
}

// Internal wraps err with the internal code and the given key/value context.
// A nil err yields nil.
func Internal(err error, operation string, kv ...any) error {
	if err == nil {
		return nil
	}
	return oops.Code(CodeInternal).With("operation", operation).With(kv...).Wrap(err)
}

// Code returns the oops code carried by err, or "" when there is none.
func Code(err error) string {
	if err == nil {
		return ""
	}
	o, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := o.Code().(string)
	return code
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && Code(err) == code
}

// HTTPStatus maps err to a response status. Uncoded errors are 500.
func HTTPStatus(err error) int {
	if status, ok := statusByCode[Code(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text safe to show a client.
func PublicMessage(err error) string {
	if HTTPStatus(err) >= http.StatusInternalServerError {
		return InternalMessage
	}
	if o, ok := oops.AsOops(err); ok && o.Public() != "" {
		return o.Public()
	}
	return err.Error()
}

// Response is the JSON body written for a failed request.
type Response struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ToResponse maps err to a status and a client-safe body.
func ToResponse(err error) (int, Response) {
	status := HTTPStatus(err)
	code := Code(err)
	if status >= http.StatusInternalServerError {
		code = CodeInternal
	}
	return status, Response{Error: strings.ToLower(code), Message: PublicMessage(err)}
}

// LogError logs err with its code and oops context when present.
func LogError(logger *slog.Logger, msg string, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	if o, ok := oops.AsOops(err); ok {
		attrs := []any{"error", o.Error()}
		if code := o.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := o.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
		return
	}
	logger.Error(msg, "error", err)
}
