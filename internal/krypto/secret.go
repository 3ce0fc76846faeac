package krypto

import "fmt"

// Secret holds arbitrary sensitive data that needs to be passed around but
// not exposed, API tokens for example. Unlike Key it has no length or
// format requirements.
type Secret struct {
	value []byte
}

func NewSecret(raw string) Secret {
	return Secret{value: []byte(raw)}
}

func (s Secret) Format(f fmt.State, verb rune) {
	f.Write([]byte(SecretMarker))
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(SecretMarker), nil
}

// SecretValue returns the raw bytes, for handing the secret to third
// party packages.
func (s Secret) SecretValue() []byte {
	return s.value
}
