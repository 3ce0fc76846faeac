// Package db opens the SQLite connection pools used by the stores.
package db

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite needs a few options to behave well under a web app:
// - WAL mode, so reads and writes don't block each other.
// - A busy timeout, the duration a connection waits for a lock.
// - Foreign key enforcement.
// Writes additionally use immediate transactions to avoid lock upgrades
// midway through a transaction.
const (
	writeOptions = "?mode=rw_&_foreign_keys=on&_journal_mode=wal&_busy_timeout=5000&_txlock=immediate"
	readOptions  = "?mode=ro_&_foreign_keys=on&_journal_mode=wal&_busy_timeout=5000"
)

// OpenSQLite opens a pool of SQLite connections to the given file. Reading
// and writing want different settings, so the caller indicates what the
// pool will be used for. Write pools are capped at a single long-lived
// connection, SQLite only supports one writer at a time anyway.
//
// Background on the single writer setup:
// https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995
func OpenSQLite(dbFile string, write bool) (*sql.DB, error) {
	opts := readOptions
	if write {
		opts = writeOptions
	}

	pool, err := sql.Open("sqlite3", dbFile+opts)
	if err != nil {
		return nil, err
	}

	if write {
		pool.SetMaxOpenConns(1)
		pool.SetMaxIdleConns(1)
		pool.SetConnMaxLifetime(0)
		pool.SetConnMaxIdleTime(0)
	}

	return pool, nil
}
