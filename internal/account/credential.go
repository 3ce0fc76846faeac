package account

import (
	"time"

	"github.com/saaskit/saaskit/internal/krypto"
)

// Credential is the stored password hash for a user. There is at most
// one credential per user, setting a new password overwrites it.
type Credential struct {
	UserID    int
	Hash      krypto.Argon2Hash
	CreatedAt time.Time
	UpdatedAt time.Time
}
