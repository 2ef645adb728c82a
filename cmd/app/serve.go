package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"social-service/configs"
	"social-service/internal/migrate"
	"social-service/internal/shared/jwt"
	"social-service/internal/shared/logx"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

var errDefaultSecret = errors.New("JWT_SECRET is not set; pass --dev-secret to run with the built-in development secret")

func newServeCmd() *cobra.Command {
	var devSecret bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, devSecret)
		},
	}
	cmd.Flags().BoolVar(&devSecret, "dev-secret", false, "allow the built-in JWT secret (local development only)")
	return cmd
}

// checkSecret refuses the built-in signing secret unless allowDev is set,
// and warns when it is.
func checkSecret(tokens *jwt.Issuer, allowDev bool, log *slog.Logger) error {
	if !tokens.DefaultSecret() {
		return nil
	}
	if !allowDev {
		return errDefaultSecret
	}
	log.Warn("signing tokens with the built-in development secret; set JWT_SECRET outside local development")
	return nil
}

func serve(ctx context.Context, devSecret bool) error {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return err
	}
	log := logx.Setup(logx.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: cfg.OTEL.ServiceName})

	shutdown, err := initOTEL(ctx, cfg.OTEL)
	if err != nil {
		return err
	}
	defer func() {
		c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = shutdown(c)
	}()

	if err := checkSecret(jwt.New(cfg.JWT.Secret, cfg.JWT.TTL), devSecret, log); err != nil {
		return err
	}

	d, err := buildDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	if cfg.AutoMigrate {
		if err := migrate.AutoMigrateAll(d.store); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           otelhttp.NewHandler(newRouter(d), "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		c, cancel := context.WithTimeout(context.WithoutCancel(gctx), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(c)
	})
	return g.Wait()
}
