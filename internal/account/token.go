package account

import (
	"time"

	"github.com/saaskit/saaskit/internal/krypto"
)

// TokenType represents the purpose of a verification token.
// Tokens are only valid for the purpose they were issued for.
type TokenType string

const (
	// TokenTypeResetPassword indicates a token is for resetting a password.
	TokenTypeResetPassword TokenType = "reset_password"
)

// VerificationToken is a single-use, time-bounded token tied to one
// user and one purpose. Tokens are issued on demand, consumed exactly
// once, and otherwise expire silently. Expiry is checked lazily at
// consumption time, there is no background sweep.
type VerificationToken struct {
	ID        int
	Value     krypto.Token
	Type      TokenType
	UserID    int
	ExpiresAt time.Time
	Consumed  bool
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at the given
// time. A token exactly at its expiry boundary is treated as expired.
func (t VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
