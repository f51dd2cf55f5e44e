package storagetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Vovarama1992/dream_interpreter/internal/storage"
)

// NewDB — мигрированная sqlite-база во временной директории теста
func NewDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dreams.db")
	db, err := storage.OpenDB(context.Background(), storage.DriverSQLite, path+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.Migrate(context.Background(), db, storage.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
