package idem

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"social-service/internal/shared/httpx"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	calls := 0
	fail := false
	h := Middleware(New(rdb), "posts", time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	do := func(uid, key string) int {
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		req = req.WithContext(httpx.WithUser(req.Context(), uid))
		if key != "" {
			req.Header.Set(Header, key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, do("u1", "k1"))
	assert.Equal(t, http.StatusConflict, do("u1", "k1"))
	assert.Equal(t, http.StatusCreated, do("u2", "k1"), "keys are scoped per user")
	assert.Equal(t, http.StatusCreated, do("u1", ""))
	assert.Equal(t, http.StatusCreated, do("u1", ""))
	assert.Equal(t, 4, calls)

	fail = true
	assert.Equal(t, http.StatusBadRequest, do("u1", "k2"))
	fail = false
	assert.Equal(t, http.StatusCreated, do("u1", "k2"), "failed request releases its key")

	assert.True(t, mr.Exists("idem:posts:u1:k1"))
	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists("idem:posts:u1:k1"))
}
