package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"social-service/internal/shared/httpx"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokens map[string]string

func (t tokens) Parse(tok string) (string, error) {
	if uid, ok := t[tok]; ok {
		return uid, nil
	}
	return "", errors.New("invalid token")
}

func TestHandlerRoutes(t *testing.T) {
	svc := newTestService(t)
	ada := register(t, svc, "Ada", "ada@example.com")
	bob := register(t, svc, "Bob", "bob@example.com")

	h := NewHandler(svc)
	auth := httpx.AuthMiddleware(tokens{"ta": ada.ID, "tb": bob.ID})
	mux := http.NewServeMux()
	protect := func(pattern string, fn httpx.HandlerFunc) {
		mux.Handle(pattern, auth(httpx.Wrap(fn)))
	}
	protect("GET /users/{id}", h.Get)
	protect("GET /users/{id}/connections", h.Connections)
	protect("PUT /users/{id}", h.Update)
	protect("POST /users/{id}/connections/{target_id}", h.Connect)
	protect("DELETE /users/{id}/connections/{target_id}", h.Disconnect)

	call := func(method, path, token, body string) (int, map[string]any) {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		var out map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return rec.Code, out
	}

	code, body := call(http.MethodGet, "/users/"+ada.ID, "tb", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Ada", data["name"])
	assert.NotContains(t, data, "PassHash")
	assert.NotContains(t, data, "passHash")

	code, body = call(http.MethodGet, "/users/xyz", "tb", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid user ID format", body["error"])

	code, body = call(http.MethodGet, "/users/"+uuid.NewString(), "tb", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", body["error"])

	code, body = call(http.MethodPut, "/users/"+ada.ID, "tb", `{"bio":"x"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Not authorized to update this profile", body["error"])

	code, body = call(http.MethodPut, "/users/"+ada.ID, "ta", `{"location":"London","role":"admin"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "London", body["data"].(map[string]any)["location"])

	code, body = call(http.MethodPut, "/users/"+ada.ID, "ta", `{"email":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_failed", body["reason"])

	code, _ = call(http.MethodPut, "/users/"+ada.ID, "ta", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = call(http.MethodPost, "/users/"+ada.ID+"/connections/"+bob.ID, "ta", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, body = call(http.MethodGet, "/users/"+ada.ID+"/connections", "tb", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])
	first := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "bob@example.com", first["email"])

	code, body = call(http.MethodDelete, "/users/"+ada.ID+"/connections/"+bob.ID, "ta", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])
	assert.Equal(t, []any{}, body["data"])
}
