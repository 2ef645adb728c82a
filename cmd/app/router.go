package main

import (
	"context"
	"net/http"
	"time"

	"social-service/internal/auth"
	"social-service/internal/engagement"
	"social-service/internal/idem"
	"social-service/internal/media"
	"social-service/internal/post"
	"social-service/internal/profile"
	"social-service/internal/ratelimit"
	"social-service/internal/shared/httpx"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const idemTTL = 24 * time.Hour

func newRouter(d *deps) http.Handler {
	authors := authorLookup(d.profiles)
	ah := auth.NewHandler(d.profiles, d.tokens)
	ph := post.NewHandler(d.posts, authors, d.images)
	eh := engagement.NewHandler(d.engagement, authors)
	uh := profile.NewHandler(d.profiles)

	api := http.NewServeMux()
	authMW := httpx.AuthMiddleware(d.tokens)
	write := ratelimit.PerUser(d.limiter, "write")

	protect := func(pattern string, fn httpx.HandlerFunc, mw ...func(http.Handler) http.Handler) {
		api.Handle(pattern, httpx.Chain(httpx.Wrap(fn), append([]func(http.Handler) http.Handler{authMW}, mw...)...))
	}
	createMW := []func(http.Handler) http.Handler{write}
	if d.idem != nil {
		createMW = append(createMW, idem.Middleware(d.idem, "posts", idemTTL))
	}

	api.Handle("POST /auth/register", httpx.Wrap(ah.Register))
	api.Handle("POST /auth/login", httpx.Wrap(ah.Login))
	protect("GET /auth/me", ah.Me)

	protect("POST /posts", ph.Create, createMW...)
	protect("GET /posts", ph.List)
	protect("GET /posts/user/{user_id}", ph.ListByAuthor)
	protect("GET /posts/{id}", ph.Get)
	protect("DELETE /posts/{id}", ph.Delete, write)

	protect("PUT /posts/{id}/like", eh.Like, write)
	protect("PUT /posts/{id}/unlike", eh.Unlike, write)
	protect("POST /posts/comment/{id}", eh.AddComment, write)
	protect("DELETE /posts/comment/{id}/{comment_id}", eh.DeleteComment, write)

	protect("GET /users/{id}", uh.Get)
	protect("GET /users/{id}/connections", uh.Connections)
	protect("PUT /users/{id}", uh.Update, write)
	protect("POST /users/{id}/connections/{target_id}", uh.Connect, write)
	protect("DELETE /users/{id}/connections/{target_id}", uh.Disconnect, write)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", api))
	mux.Handle("GET "+media.PathPrefix+"{key...}", httpx.Wrap(media.NewHandler(d.images).Get))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", d.health)

	return httpx.Chain(mux,
		httpx.Recover(d.log),
		httpx.RequestLog(d.log),
		httpx.CORS(d.cfg.CORSOrigins),
	)
}

func (d *deps) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status := map[string]string{"db": "ok"}
	code := http.StatusOK
	if err := d.store.Ping(ctx); err != nil {
		status["db"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	if d.redis != nil {
		status["redis"] = "ok"
		if err := d.redis.Ping(ctx); err != nil {
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	httpx.WriteJSON(w, map[string]any{"success": code == http.StatusOK, "checks": status}, code)
}
