package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"social-service/internal/metrics"
	"social-service/internal/shared/apperr"
	"social-service/internal/shared/httpx"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

var ErrLimited = apperr.RateLimited("rate_limited", "Too many requests, slow down")

// Limiter decides whether key may make another request in the current
// window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Redis counts requests per key in fixed windows shared by every replica.
type Redis struct {
	R      redis.Cmdable
	Limit  int64
	Window time.Duration
}

func NewRedis(r redis.Cmdable, limit int64, window time.Duration) *Redis {
	return &Redis{R: r, Limit: limit, Window: window}
}

// Allow increments the key's counter and reads its TTL in one transaction.
// A counter without a TTL gets one on every call until EXPIRE succeeds, so a
// failed EXPIRE cannot leave the key counting forever.
func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := "rl:" + key
	pipe := l.R.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	if ttl.Val() < 0 {
		if err := l.R.Expire(ctx, k, l.Window).Err(); err != nil {
			return false, err
		}
	}
	return incr.Val() <= l.Limit, nil
}

// Local is a per process token bucket per key.
type Local struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	every   rate.Limit
	burst   int
}

func NewLocal(limit int64, window time.Duration) *Local {
	return &Local{
		buckets: map[string]*rate.Limiter{},
		every:   rate.Limit(float64(limit) / window.Seconds()),
		burst:   int(limit),
	}
}

func (l *Local) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.every, l.burst)
		l.buckets[key] = b
	}
	l.mu.Unlock()
	return b.Allow(), nil
}

// PerUser limits authenticated requests by user id. It must run inside
// httpx.AuthMiddleware. A limiter backend failure lets the request through.
func PerUser(l Limiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, err := httpx.UserFromCtx(r)
			if err != nil {
				httpx.WriteAppError(w, httpx.ErrUnauthorized)
				return
			}
			ok, err := l.Allow(r.Context(), scope+":"+uid)
			if err != nil {
				slog.WarnContext(r.Context(), "rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				metrics.RateLimited.Inc()
				httpx.WriteAppError(w, ErrLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
