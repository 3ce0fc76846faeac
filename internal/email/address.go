package email

import (
	"errors"
	"net/mail"
	"strings"
)

// ErrInvalidEmail indicates an email address is not valid.
var ErrInvalidEmail = errors.New("invalid email address")

// Address is how the backend represents email addresses.
type Address string

// ParseAddress checks if the given string is shaped like a bare email
// address. It only validates the format, there is no guarantee the address
// actually exists.
func ParseAddress(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	// mail.ParseAddress also accepts addresses with display names and
	// comments: "Alice <alice@example.com>(comment)". Reject those, the
	// input must consist of only the address itself.
	if addr.Address != trimmed {
		return "", ErrInvalidEmail
	}

	return Address(addr.Address), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	addr, err := ParseAddress(string(text))
	if err != nil {
		return err
	}

	*a = addr

	return nil
}
