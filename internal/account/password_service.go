package account

import (
	"context"
	"time"
)

// PasswordService manages the stored credentials of users.
type PasswordService struct {
	store Store

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewPasswordService(store Store) *PasswordService {
	return &PasswordService{
		store:   store,
		NowFunc: time.Now,
	}
}

// SetPassword hashes the password and upserts the credential for the
// user. Password strength is deliberately not checked here, callers
// validate before they get hold of a Password value.
func (s *PasswordService) SetPassword(ctx context.Context, userID int, pwd Password) error {
	hash, err := pwd.Hash()
	if err != nil {
		return err
	}

	now := s.NowFunc()

	return inTx(ctx, s.store, func(tx Tx) error {
		return tx.UpsertCredential(&Credential{
			UserID:    userID,
			Hash:      hash,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
}

// IsValidPassword reports whether the password matches the stored
// credential of the user. A user without a credential is never valid,
// that is not an error.
func (s *PasswordService) IsValidPassword(ctx context.Context, userID int, pwd Password) (bool, error) {
	creds, err := s.store.FindCredentials(ctx, &CredentialFilter{
		UserIDs: []int{userID},
	})
	if err != nil {
		return false, err
	}

	if len(creds) != 1 {
		return false, nil
	}

	return pwd.Match(creds[0].Hash), nil
}
