package idem

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"social-service/internal/shared/apperr"
	"social-service/internal/shared/httpx"

	"github.com/redis/go-redis/v9"
)

const Header = "Idempotency-Key"

var ErrDuplicate = apperr.Conflict("duplicate_request", "Duplicate request")

type Store interface {
	PutNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type redisStore struct{ r redis.Cmdable }

func New(r redis.Cmdable) Store {
	return &redisStore{r: r}
}

func (s *redisStore) PutNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.r.SetNX(ctx, "idem:"+key, "1", ttl).Result()
}

func (s *redisStore) Release(ctx context.Context, key string) error {
	return s.r.Del(ctx, "idem:"+key).Err()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware rejects a repeated Idempotency-Key from the same user with 409.
// Requests without the header pass through. A key whose request failed is
// released so the client may retry it.
func Middleware(s Store, scope string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(Header)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			uid, err := httpx.UserFromCtx(r)
			if err != nil {
				httpx.WriteAppError(w, httpx.ErrUnauthorized)
				return
			}
			full := scope + ":" + uid + ":" + key
			ok, err := s.PutNX(r.Context(), full, ttl)
			if err != nil {
				slog.WarnContext(r.Context(), "idempotency store unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				httpx.WriteAppError(w, ErrDuplicate)
				return
			}
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			if sw.status >= http.StatusBadRequest {
				if err := s.Release(context.WithoutCancel(r.Context()), full); err != nil {
					slog.WarnContext(r.Context(), "release idempotency key", "error", err)
				}
			}
		})
	}
}
