package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"social-service/internal/shared/apperr"

	"github.com/go-playground/validator/v10"
)

type HandlerFunc func(http.ResponseWriter, *http.Request) error

// APIError is the failure half of the response envelope.
type APIError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
}

type ctxKey string

const ctxUserIDKey ctxKey = "httpx.user_id"

const maxJSONBody = 1 << 20

var ErrUnauthorized = apperr.Authentication("missing_user", "Not authorized, no token")

func WriteJSON(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes {"success":true,"data":v}.
func WriteData(w http.ResponseWriter, v any, code int) {
	WriteJSON(w, map[string]any{"success": true, "data": v}, code)
}

func WriteMessage(w http.ResponseWriter, msg string, code int) {
	WriteJSON(w, map[string]any{"success": true, "message": msg}, code)
}

func WriteError(w http.ResponseWriter, status int, msg, reason string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	WriteJSON(w, APIError{Error: msg, Reason: reason}, status)
}

// WriteAppError writes the envelope for a typed error.
func WriteAppError(w http.ResponseWriter, e *apperr.Error) {
	WriteError(w, e.Status, e.Message, e.Reason)
}

// Wrap adapts an error returning handler. Typed errors from apperr keep
// their status and message; validator errors become 400; anything else is
// logged and answered with a bare 500.
func Wrap(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		if e, ok := apperr.As(err); ok {
			if e.Kind == apperr.KindInternal {
				slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
			}
			WriteAppError(w, e)
			return
		}
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			WriteError(w, http.StatusBadRequest, validationMessage(ve), "validation_failed")
			return
		}
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusInternalServerError, "Server Error", "internal")
	})
}

func validationMessage(ve validator.ValidationErrors) string {
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}

// Decode reads a JSON body. Unknown fields are ignored.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var t T
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return t, apperr.Validation("invalid_body", "Invalid request body").WithCause(err)
	}
	return t, nil
}

func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// TokenVerifier turns a bearer token into a user id.
type TokenVerifier interface {
	Parse(tok string) (string, error)
}

// AuthMiddleware rejects requests without a valid bearer token before the
// wrapped handler runs.
func AuthMiddleware(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := BearerToken(r)
			if tok == "" {
				WriteError(w, http.StatusUnauthorized, "Not authorized, no token", "missing_bearer")
				return
			}
			uid, err := v.Parse(tok)
			if err != nil || uid == "" {
				WriteError(w, http.StatusUnauthorized, "Not authorized, token failed", "invalid_token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), uid)))
		})
	}
}

func WithUser(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, uid)
}

func UserFromCtx(r *http.Request) (string, error) {
	uid, _ := r.Context().Value(ctxUserIDKey).(string)
	if uid == "" {
		return "", ErrUnauthorized
	}
	return uid, nil
}

// QueryInt falls back to def when the parameter is absent or not a number.
func QueryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// PathID parses a numeric path value.
func PathID(r *http.Request, name string) (uint64, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid_id", "Invalid "+name)
	}
	return id, nil
}
