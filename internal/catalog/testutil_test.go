// internal/catalog/testutil_test.go
package catalog

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/vmunix/discshelf/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := migrations.Apply(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func countMovies(t *testing.T, store *Store) int {
	t.Helper()
	st, err := store.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	return st.Total
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}
