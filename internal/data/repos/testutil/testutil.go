// Package testutil provides database plumbing shared by repository and
// service tests. Set TEST_POSTGRES_DSN to run against a real Postgres
// instance; otherwise tests fall back to an in-memory sqlite database.
package testutil

import (
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sprintflow/sprintflow-backend/internal/db"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
)

var (
	dbOnce sync.Once
	shared *gorm.DB
	dbErr  error
)

// DB returns a migrated database handle shared across the test binary.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	dbOnce.Do(func() {
		shared, dbErr = open()
		if dbErr == nil {
			dbErr = shared.AutoMigrate(db.Models()...)
		}
	})
	if dbErr != nil {
		t.Fatalf("test database: %v", dbErr)
	}
	return shared
}

func open() (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	}
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), cfg)
	}
	return gorm.Open(sqlite.Open("file::memory:?cache=shared"), cfg)
}

// Tx starts a transaction that is rolled back when the test finishes,
// so tests never leak rows into the shared database.
func Tx(t *testing.T) *gorm.DB {
	t.Helper()
	tx := DB(t).Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() { tx.Rollback() })
	return tx
}

// Logger returns a quiet logger suitable for constructing repos in tests.
func Logger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}
