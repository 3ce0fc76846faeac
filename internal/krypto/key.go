package krypto

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// SecretMarker is written wherever a secret value would otherwise end up in
// logs or marshalled output. Grep for it to find accidental exposure paths.
const SecretMarker = "<!SECRET_REDACTED!>"

const keyLen = 32

var ErrInvalidKey = errors.New("invalid key")

// Key is a 32 byte symmetric key, used for example to sign session tokens.
// Keys come in via configuration and must never be logged or marshalled,
// the type guards against both.
type Key struct {
	value []byte
}

// ParseKey decodes a hex encoded key of exactly 32 bytes (64 hex characters).
func ParseKey(raw string) (Key, error) {
	if hex.DecodedLen(len(raw)) != keyLen {
		return Key{}, ErrInvalidKey
	}

	value, err := hex.DecodeString(raw)
	if err != nil {
		return Key{}, ErrInvalidKey
	}

	return Key{value: value}, nil
}

func (k Key) Format(f fmt.State, verb rune) {
	f.Write([]byte(SecretMarker))
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(SecretMarker), nil
}

// SecretValue returns the raw key bytes. It's the escape hatch for handing
// the key to third party packages, such as the JWT signer.
func (k Key) SecretValue() []byte {
	return k.value
}
