package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"expensetracker/internal/apperr"
	"expensetracker/internal/middleware"
)

const maxJSONBody = 1 << 20

var hexColorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// newValidator returns a validator that reports json field names and knows
// the hexcolor3or6 tag.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("hexcolor3or6", func(fl validator.FieldLevel) bool {
		return hexColorPattern.MatchString(fl.Field().String())
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err through its code. Server-side failures are logged
// with their context; the client only sees the generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, body := apperr.ToResponse(err)
	if status >= http.StatusInternalServerError {
		apperr.LogError(logger.With("method", r.Method, "path", r.URL.Path), "request failed", err)
	}
	writeJSON(w, status, body)
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
func decodeAndValidate(r *http.Request, v *validator.Validate, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return apperr.BadRequest("Invalid request body")
	}
	if err := v.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.BadRequest("Invalid request body")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperr.BadRequest(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "uuid":
		return field + " must be a valid UUID"
	case "hexcolor3or6":
		return field + " must be a hex color like #FFF or #FFFFFF"
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

// callerID returns the authenticated user id set by the JWT middleware.
func callerID(r *http.Request) (string, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return "", apperr.Unauthorized("Unauthorized")
	}
	return id, nil
}

// pathID returns the {id} URL parameter. An id that is not a UUID cannot
// name a stored row, so it is reported as NOT_FOUND.
func pathID(r *http.Request, entity string) (string, error) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		return "", apperr.NotFound(fmt.Sprintf("%s with ID %s not found", entity, id))
	}
	return id, nil
}

// queryID returns the named query parameter, rejecting values that are not
// UUIDs.
func queryID(r *http.Request, name string) (string, error) {
	id := r.URL.Query().Get(name)
	if id != "" && uuid.Validate(id) != nil {
		return "", apperr.BadRequest(name + " must be a valid UUID")
	}
	return id, nil
}

// checkOwner returns FORBIDDEN when owner is not the caller.
func checkOwner(owner, caller, entity string) error {
	if owner != caller {
		return apperr.Forbidden("You do not have access to this " + entity)
	}
	return nil
}
