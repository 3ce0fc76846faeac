package db

import (
	"database/sql"

	"github.com/saaskit/saaskit/internal/account"
	"github.com/saaskit/saaskit/internal/krypto"
)

type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// CreateUser creates a user in the database.
// It updates the users ID field when successful.
func (t *Tx) CreateUser(u *account.User) error {
	return insertUser(t.tx.Exec, u)
}

// UpdateUser updates a user in the database.
// It returns errorz.ErrNotFound if no user is found.
func (t *Tx) UpdateUser(u *account.User) error {
	return updateUser(t.tx.Exec, u)
}

// FindUsers queries for users based on the provided filter.
// It returns an empty slice if no users are found.
func (t *Tx) FindUsers(filter *account.UserFilter) ([]account.User, error) {
	return selectUsers(t.tx.Query, filter)
}

// UpsertCredential creates the credential for a user, or overwrites it
// if the user already has one.
func (t *Tx) UpsertCredential(c *account.Credential) error {
	return upsertCredential(t.tx.Exec, c)
}

// FindCredentials queries for credentials based on the provided filter.
func (t *Tx) FindCredentials(filter *account.CredentialFilter) ([]account.Credential, error) {
	return selectCredentials(t.tx.Query, filter)
}

// CreateToken creates a verification token in the database.
// It updates the tokens ID field when successful.
func (t *Tx) CreateToken(tok *account.VerificationToken) error {
	return insertToken(t.tx.Exec, tok)
}

// FindTokens queries for verification tokens based on the provided filter.
func (t *Tx) FindTokens(filter *account.TokenFilter) ([]account.VerificationToken, error) {
	return selectTokens(t.tx.Query, filter)
}

// ConsumeToken conditionally marks the token with the provided value as
// consumed. It reports false if no unconsumed token with that value
// exists. The flag is flipped with a single conditional UPDATE, so two
// concurrent attempts on the same value can never both succeed.
func (t *Tx) ConsumeToken(value krypto.Token) (bool, error) {
	return consumeToken(t.tx.Exec, value)
}
