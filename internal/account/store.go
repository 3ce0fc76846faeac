package account

import (
	"context"
	"errors"

	"github.com/saaskit/saaskit/internal/email"
	"github.com/saaskit/saaskit/internal/krypto"
)

// UserFilter is used to filter users.
// Returned users must match all the provided fields.
// If a field is empty or nil, it's ignored.
type UserFilter struct {
	IDs    []int
	Emails []email.Address
}

// CredentialFilter is used to filter credentials.
type CredentialFilter struct {
	UserIDs []int
}

// TokenFilter is used to filter verification tokens.
type TokenFilter struct {
	IDs        []int
	Values     []krypto.Token
	Types      []TokenType
	UserIDs    []int
	IsConsumed *bool
}

// Store provides access to the account store.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
	FindUsers(ctx context.Context, filter *UserFilter) ([]User, error)
	FindCredentials(ctx context.Context, filter *CredentialFilter) ([]Credential, error)
	FindTokens(ctx context.Context, filter *TokenFilter) ([]VerificationToken, error)
}

// Tx is a transaction. If an error occurs on any of the methods,
// the transaction is considered to have failed and should be rolled back.
// Tx is not safe for concurrent use.
type Tx interface {
	Commit() error
	Rollback() error

	CreateUser(u *User) error
	UpdateUser(u *User) error
	FindUsers(filter *UserFilter) ([]User, error)

	UpsertCredential(c *Credential) error
	FindCredentials(filter *CredentialFilter) ([]Credential, error)

	CreateToken(t *VerificationToken) error
	FindTokens(filter *TokenFilter) ([]VerificationToken, error)

	// ConsumeToken conditionally marks the token with the provided value
	// as consumed. It reports false if the token does not exist or was
	// already consumed, guaranteeing at-most-once consumption even under
	// concurrent redemption attempts.
	ConsumeToken(value krypto.Token) (bool, error)
}

// inTx runs f inside a transaction on the provided store.
func inTx(ctx context.Context, store Store, f func(tx Tx) error) error {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return err
	}

	err = f(tx)
	if err != nil {
		rBackErr := tx.Rollback()
		if rBackErr != nil {
			err = errors.Join(err, rBackErr)
		}
		return err
	}

	err = tx.Commit()
	if err != nil {
		return err
	}

	return nil
}

func ptr[T any](v T) *T {
	return &v
}
