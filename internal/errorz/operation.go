package errorz

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a machine readable classification of a domain error.
// The transport layer maps kinds directly to response codes.
type Kind string

const (
	KindUnknown                Kind = "UNKNOWN_ERROR"
	KindNotFound               Kind = "NOT_FOUND"
	KindEmailInUse             Kind = "EMAIL_IN_USE"
	KindInvalidEmail           Kind = "INVALID_EMAIL"
	KindInvalidPassword        Kind = "INVALID_PASSWORD"
	KindInvalidToken           Kind = "INVALID_TOKEN"
	KindExpiredToken           Kind = "EXPIRED_TOKEN"
	KindInvalidParameters      Kind = "INVALID_PARAMETERS"
	KindInvalidEmailOrPassword Kind = "INVALID_EMAIL_OR_PASSWORD"
	KindUnauthorized           Kind = "UNAUTHORIZED"
)

// statusByKind holds the HTTP-like severity classification for each kind.
var statusByKind = map[Kind]int{
	KindUnknown:                http.StatusInternalServerError,
	KindNotFound:               http.StatusNotFound,
	KindEmailInUse:             http.StatusBadRequest,
	KindInvalidEmail:           http.StatusBadRequest,
	KindInvalidPassword:        http.StatusBadRequest,
	KindInvalidToken:           http.StatusBadRequest,
	KindExpiredToken:           http.StatusBadRequest,
	KindInvalidParameters:      http.StatusBadRequest,
	KindInvalidEmailOrPassword: http.StatusUnauthorized,
	KindUnauthorized:           http.StatusUnauthorized,
}

// Operation is an error raised by a domain operation. It carries a
// machine readable kind, an HTTP-like status and an optional human
// readable detail string.
type Operation struct {
	Kind   Kind
	Status int
	Detail string
	Err    error
}

// Op creates a new operation error for the given kind.
func Op(kind Kind) *Operation {
	return &Operation{
		Kind:   kind,
		Status: statusFor(kind),
	}
}

// OpDetail creates a new operation error with a human readable detail.
func OpDetail(kind Kind, detail string) *Operation {
	op := Op(kind)
	op.Detail = detail
	return op
}

// OpWrap creates a new operation error wrapping a lower-layer cause.
func OpWrap(kind Kind, err error) *Operation {
	op := Op(kind)
	op.Err = err
	return op
}

func statusFor(kind Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (o *Operation) Error() string {
	if o.Detail != "" {
		return fmt.Sprintf("%s: %s", o.Kind, o.Detail)
	}
	return string(o.Kind)
}

func (o *Operation) Unwrap() error {
	return o.Err
}

// Is makes operation errors match on kind, so callers can use
// errors.Is(err, errorz.Op(errorz.KindInvalidToken)).
func (o *Operation) Is(target error) bool {
	var other *Operation
	if !errors.As(target, &other) {
		return false
	}
	return o.Kind == other.Kind
}

// AsOperation extracts an operation error from err's chain.
// Errors that are not operation errors are classified as KindUnknown.
func AsOperation(err error) *Operation {
	var op *Operation
	if errors.As(err, &op) {
		return op
	}

	return OpWrap(KindUnknown, err)
}
