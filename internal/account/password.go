package account

import (
	"fmt"

	"github.com/saaskit/saaskit/internal/errorz"
	"github.com/saaskit/saaskit/internal/krypto"
)

const (
	minPasswordChars  = 8
	minPasswordDigits = 1

	// We put a generous upper cap on password length, so people can use
	// passphrases but we don't allow MBs of data as a password.
	maxPasswordBytes = 512
)

var ErrInvalidPassword = fmt.Errorf("invalid password")

// Password is a plaintext password.
//
// It should never be persisted, logged or exposed in any other way. To
// protect ourselves from accidentally doing so, the type implements
// several common interfaces that would allow it to be used inappropriately.
//
// There are only two operations allowed on a Password:
// - Converting it to a hash.
// - Comparing it with an existing hash to see if they match.
type Password struct {
	plain []byte
}

// ParsePassword creates a new Password from a plaintext string.
// It errors if the password is empty or too long. Strength rules are
// not checked here, that is ValidatePassword's job and the caller's
// responsibility.
func ParsePassword(pwd string) (Password, error) {
	if len(pwd) == 0 || len(pwd) > maxPasswordBytes {
		return Password{}, ErrInvalidPassword
	}

	return Password{
		plain: []byte(pwd),
	}, nil
}

// ValidatePassword checks the password strength requirements:
// at least 8 characters and at least 1 number. The returned error
// carries a human readable reason suitable for user-facing messages.
func ValidatePassword(pwd string) error {
	if len(pwd) < minPasswordChars {
		return errorz.OpDetail(errorz.KindInvalidPassword, fmt.Sprintf("Must be at least %d characters", minPasswordChars))
	}

	digits := 0
	for _, r := range pwd {
		if r >= '0' && r <= '9' {
			digits++
		}
	}

	if digits < minPasswordDigits {
		return errorz.OpDetail(errorz.KindInvalidPassword, fmt.Sprintf("Must have at least %d number", minPasswordDigits))
	}

	return nil
}

// Match checks if the plaintext password matches the given hash.
func (p Password) Match(h krypto.Argon2Hash) bool {
	return h.MatchBytes(p.plain)
}

// Hash hashes the plaintext password using the argon2id algorithm.
func (p Password) Hash() (krypto.Argon2Hash, error) {
	return krypto.HashArgon2(p.plain)
}

func (p Password) Format(f fmt.State, verb rune) {
	f.Write([]byte(krypto.SecretMarker))
}

func (p Password) MarshalText() ([]byte, error) {
	return []byte(krypto.SecretMarker), nil
}
