package db

import (
	"context"
	"database/sql"

	"github.com/saaskit/saaskit/internal/account"
)

// Store is responsible for interacting with a database.
//
// It distinguishes between a read and a write database handle, SQLite
// performs best with a single write connection and a pool of readers.
type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

// New creates a new Store.
func New(readDB, writeDB *sql.DB) *Store {
	return &Store{
		readDB:  readDB,
		writeDB: writeDB,
	}
}

// BeginTx starts a new transaction on the write database.
func (s *Store) BeginTx(ctx context.Context) (account.Tx, error) {
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{
		tx: tx,
	}, nil
}

// FindUsers queries for users based on the provided filter.
// It returns an empty slice if no users are found.
func (s *Store) FindUsers(ctx context.Context, filter *account.UserFilter) ([]account.User, error) {
	return selectUsers(s.queryFunc(ctx), filter)
}

// FindCredentials queries for credentials based on the provided filter.
func (s *Store) FindCredentials(ctx context.Context, filter *account.CredentialFilter) ([]account.Credential, error) {
	return selectCredentials(s.queryFunc(ctx), filter)
}

// FindTokens queries for verification tokens based on the provided filter.
func (s *Store) FindTokens(ctx context.Context, filter *account.TokenFilter) ([]account.VerificationToken, error) {
	return selectTokens(s.queryFunc(ctx), filter)
}

func (s *Store) queryFunc(ctx context.Context) queryFunc {
	return func(query string, params ...any) (*sql.Rows, error) {
		return s.readDB.QueryContext(ctx, query, params...)
	}
}
