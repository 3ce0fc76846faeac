// Package migrate runs sequential SQL migrations from a file system.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
)

var (
	// ErrNoTable indicates the migrations table does not exist.
	ErrNoTable = errors.New("migrations table does not exist")
	// ErrMigrationsMismatch indicates the migrations that ran before don't line up with the files available now.
	ErrMigrationsMismatch = errors.New("migrations mismatch")
)

// Migration is a migration that was ran.
type Migration struct {
	// Sequence is the number of the migration. Starts at 0.
	Sequence int
	Filename string
	Metadata Metadata
}

// Metadata records who ran a migration and when, to help with debugging
// if a migration ever goes wrong.
type Metadata struct {
	AppVersion string
	Timestamp  time.Time
}

// Equal checks if two migrations are equal.
func (m Migration) Equal(other Migration) bool {
	return m.Sequence == other.Sequence &&
		m.Filename == other.Filename &&
		m.Metadata.AppVersion == other.Metadata.AppVersion &&
		m.Metadata.Timestamp.Equal(other.Metadata.Timestamp)
}

// MigrationError is an error that occurred while executing a migration file.
type MigrationError struct {
	Sequence int
	Filename string
	Err      error
}

func (m MigrationError) Error() string {
	return fmt.Sprintf("migration [%d] %q failed: %v", m.Sequence, m.Filename, m.Err)
}

const createTableQuery = `CREATE TABLE IF NOT EXISTS migrations (
	sequence    INTEGER PRIMARY KEY,
	filename    TEXT NOT NULL,
	app_version TEXT NOT NULL,
	timestamp   TIMESTAMP NOT NULL
)
`

// RunFS runs the migrations from the provided fs.FS that did not run before.
// It returns the migrations that were run now, an empty slice if everything
// was already up to date. Only .sql files in the root of the FS are
// considered, they run in lexical filename order inside a single
// transaction. RunFS assumes all migration files fit in memory.
func RunFS(ctx context.Context, db *sql.DB, fileSys fs.FS, meta Metadata) ([]Migration, error) {
	files, err := readMigrationFiles(fileSys)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(createTableQuery); err != nil {
		return nil, rollbackOn(tx, fmt.Errorf("failed to create migrations table: %w", err))
	}

	before, err := scanMigrations(func(q string) (*sql.Rows, error) {
		return tx.Query(q)
	})
	if err != nil {
		return nil, rollbackOn(tx, err)
	}

	ranNow, err := apply(tx, before, files, meta)
	if err != nil {
		return nil, rollbackOn(tx, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ranNow, nil
}

// QueryMigrations queries the given db for all migrations that ran.
// If the migrations table does not exist yet, it returns ErrNoTable.
func QueryMigrations(ctx context.Context, db *sql.DB) ([]Migration, error) {
	return scanMigrations(func(q string) (*sql.Rows, error) {
		return db.QueryContext(ctx, q)
	})
}

// apply verifies the migrations that ran before against the files on disk
// and executes the remainder.
func apply(tx *sql.Tx, before []Migration, files []migrationFile, meta Metadata) ([]Migration, error) {
	if len(before) > len(files) {
		return nil, fmt.Errorf(
			"found %d existing migrations but only have %d files: %w",
			len(before), len(files), ErrMigrationsMismatch,
		)
	}

	for i, b := range before {
		if b.Sequence != i {
			return nil, fmt.Errorf("migration sequence mismatch, wanted %d got %d", i, b.Sequence)
		}

		if b.Filename != files[i].name {
			return nil, fmt.Errorf(
				"migration %d had filename %s, but now encountering %s: %w",
				i, b.Filename, files[i].name, ErrMigrationsMismatch,
			)
		}
	}

	const insertQuery = `INSERT INTO migrations (sequence, filename, app_version, timestamp) VALUES (?, ?, ?, ?)`

	ranNow := make([]Migration, 0, len(files)-len(before))
	for i, f := range files[len(before):] {
		m := Migration{
			Sequence: len(before) + i,
			Filename: f.name,
			Metadata: meta,
		}

		if _, err := tx.Exec(f.sql); err != nil {
			return nil, MigrationError{
				Sequence: m.Sequence,
				Filename: m.Filename,
				Err:      err,
			}
		}

		if _, err := tx.Exec(insertQuery, m.Sequence, m.Filename, m.Metadata.AppVersion, m.Metadata.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to record migration: %w", err)
		}

		ranNow = append(ranNow, m)
	}

	return ranNow, nil
}

func scanMigrations(rowsFunc func(q string) (*sql.Rows, error)) ([]Migration, error) {
	const q = `SELECT sequence, filename, app_version, timestamp FROM migrations ORDER BY sequence`

	rows, err := rowsFunc(q)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, ErrNoTable
		}
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	migrations := make([]Migration, 0)
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Sequence, &m.Filename, &m.Metadata.AppVersion, &m.Metadata.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}

		migrations = append(migrations, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}

	return migrations, nil
}

type migrationFile struct {
	name string
	sql  string
}

func readMigrationFiles(fileSys fs.FS) ([]migrationFile, error) {
	// fs.ReadDir returns entries sorted by filename.
	entries, err := fs.ReadDir(fileSys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	files := make([]migrationFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		content, err := fs.ReadFile(fileSys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %q: %w", entry.Name(), err)
		}

		files = append(files, migrationFile{
			name: entry.Name(),
			sql:  string(content),
		})
	}

	return files, nil
}

func rollbackOn(tx *sql.Tx, err error) error {
	if rErr := tx.Rollback(); rErr != nil {
		return errors.Join(err, rErr)
	}

	return err
}
