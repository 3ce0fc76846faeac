// Package testdb provides in-memory SQLite databases for tests.
package testdb

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/saaskit/saaskit/internal/db"
	"github.com/saaskit/saaskit/internal/migrate"
	"github.com/saaskit/saaskit/migrations"
)

// RunWhile provides an empty database with all migrations applied. It is
// closed when the test finishes.
func RunWhile(t *testing.T, write bool) *sql.DB {
	t.Helper()

	testDB := RunUnmigratedWhile(t, write)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := migrate.RunFS(ctx, testDB, migrations.FS, migrate.Metadata{}); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return testDB
}

// RunUnmigratedWhile provides an empty database without any migrations
// applied, for tests that exercise the migration runner itself.
func RunUnmigratedWhile(t *testing.T, write bool) *sql.DB {
	t.Helper()

	testDB, err := db.OpenSQLite(":memory:", write)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		if err := testDB.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	return testDB
}
