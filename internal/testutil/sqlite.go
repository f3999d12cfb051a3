// Package testutil provides in-memory databases for package tests.
package testutil

import (
	"testing"

	"go-inventory-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB returns an isolated in-memory database with every table
// migrated. The pool holds a single connection so concurrent units of work
// run one after another, the way row locks serialize them on Postgres.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// Models lists every persisted type.
func Models() []any {
	return []any{
		&model.User{},
		&model.Product{},
		&model.Transaction{},
		&model.TransactionItem{},
		&model.ProductRequest{},
		&model.StockMovement{},
		&model.ReversalRequest{},
	}
}
