package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"social-service/internal/shared/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier map[string]string

func (f fakeVerifier) Parse(tok string) (string, error) {
	if uid, ok := f[tok]; ok {
		return uid, nil
	}
	return "", errors.New("invalid token")
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAuthMiddleware(t *testing.T) {
	var reached string
	h := AuthMiddleware(fakeVerifier{"good": "u-1"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached, _ = UserFromCtx(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		status int
		reason string
	}{
		{"no header", "", http.StatusUnauthorized, "missing_bearer"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "missing_bearer"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, "invalid_token"},
		{"good token", "Bearer good", http.StatusNoContent, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			reached = ""
			req := httptest.NewRequest(http.MethodGet, "/posts", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, c.status, rec.Code)
			if c.status == http.StatusUnauthorized {
				body := decodeBody(t, rec)
				assert.Equal(t, false, body["success"])
				assert.Equal(t, c.reason, body["reason"])
				assert.Empty(t, reached)
			} else {
				assert.Equal(t, "u-1", reached)
			}
		})
	}
}

func TestWrapMapsErrors(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
	}
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", apperr.NotFound("post_not_found", "Post not found"), http.StatusNotFound, "Post not found"},
		{"authz override", apperr.Authorization("not_author", "User not authorized").WithStatus(http.StatusUnauthorized), http.StatusUnauthorized, "User not authorized"},
		{"invalid state", apperr.InvalidState("not_liked", "Post has not yet been liked"), http.StatusBadRequest, "Post has not yet been liked"},
		{"validator", validator.New().Struct(req{Email: "x"}), http.StatusBadRequest, "email failed email"},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, "Server Error"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := Wrap(func(w http.ResponseWriter, r *http.Request) error { return c.err })
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, c.status, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, c.msg, body["error"])
		})
	}
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, map[string]string{"id": "1"}, http.StatusCreated)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"id": "1"}, body["data"])
}

func TestDecode(t *testing.T) {
	type in struct {
		Text string `json:"text"`
	}
	t.Run("ignores unknown fields", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi","extra":1}`))
		got, err := Decode[in](httptest.NewRecorder(), r)
		require.NoError(t, err)
		assert.Equal(t, "hi", got.Text)
	})
	t.Run("empty body is zero value", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		got, err := Decode[in](httptest.NewRecorder(), r)
		require.NoError(t, err)
		assert.Empty(t, got.Text)
	})
	t.Run("malformed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":`))
		_, err := Decode[in](httptest.NewRecorder(), r)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestQueryIntAndPathID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/posts?page=3&limit=abc", nil)
	assert.Equal(t, 3, QueryInt(r, "page", 1))
	assert.Equal(t, 10, QueryInt(r, "limit", 10))
	assert.Equal(t, 7, QueryInt(r, "missing", 7))

	r.SetPathValue("id", "42")
	id, err := PathID(r, "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	r.SetPathValue("id", "abc")
	_, err = PathID(r, "id")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))
	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
