package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"social-service/configs"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
	"gorm.io/plugin/opentelemetry/tracing"
)

type Store struct{ DB *gorm.DB }

func NewStore(g *gorm.DB) *Store { return &Store{DB: g} }

// Config returns the gorm settings shared by every dialector.
func Config() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// Open connects to postgres, retrying with exponential backoff while the
// database comes up. Replicas, when configured, serve reads through
// dbresolver.
func Open(ctx context.Context, cfg configs.DBConfig, log *slog.Logger) (*Store, error) {
	var (
		last error
		g    *gorm.DB
	)
	for i := 0; i < 8; i++ {
		g, last = gorm.Open(postgres.Open(cfg.DSN()), Config())
		if last == nil {
			break
		}
		wait := time.Duration(1<<i) * time.Second
		log.Warn("db open failed, retrying", "attempt", i+1, "wait", wait, "error", last)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	if last != nil {
		return nil, fmt.Errorf("db open: %w", last)
	}

	sqlDB, err := g.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(40)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if len(cfg.Replicas) > 0 {
		var readers []gorm.Dialector
		for _, dsn := range cfg.Replicas {
			readers = append(readers, postgres.Open(dsn))
		}
		if err := g.Use(dbresolver.Register(dbresolver.Config{
			Replicas: readers,
			Policy:   dbresolver.RandomPolicy{},
		}).SetMaxOpenConns(40).SetMaxIdleConns(10).SetConnMaxLifetime(30 * time.Minute)); err != nil {
			return nil, fmt.Errorf("dbresolver: %w", err)
		}
		log.Info("read replicas registered", "count", len(readers))
	}
	if err := g.Use(tracing.NewPlugin()); err != nil {
		return nil, fmt.Errorf("gorm tracing: %w", err)
	}
	return &Store{DB: g}, nil
}

// Writer pins a session to the primary. Use it for read-after-write paths
// when replicas are configured.
func (s *Store) Writer(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Clauses(dbresolver.Write)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
