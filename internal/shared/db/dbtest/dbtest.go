// Package dbtest opens throwaway sqlite databases for repository tests.
package dbtest

import (
	"testing"

	"social-service/internal/shared/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns an in-memory store with models migrated. The pool is held at
// one connection so every query sees the same memory database.
func Open(t testing.TB, models ...any) *db.Store {
	t.Helper()
	cfg := db.Config()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	g, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := g.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		if err := g.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db.NewStore(g)
}
