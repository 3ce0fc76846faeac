package errorz_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/saaskit/saaskit/internal/errorz"
)

func Test_Operation_Statuses(t *testing.T) {
	tests := map[errorz.Kind]int{
		errorz.KindUnknown:                http.StatusInternalServerError,
		errorz.KindNotFound:               http.StatusNotFound,
		errorz.KindEmailInUse:             http.StatusBadRequest,
		errorz.KindInvalidEmail:           http.StatusBadRequest,
		errorz.KindInvalidPassword:        http.StatusBadRequest,
		errorz.KindInvalidToken:           http.StatusBadRequest,
		errorz.KindExpiredToken:           http.StatusBadRequest,
		errorz.KindInvalidParameters:      http.StatusBadRequest,
		errorz.KindInvalidEmailOrPassword: http.StatusUnauthorized,
	}

	for kind, want := range tests {
		t.Run(string(kind), func(t *testing.T) {
			op := errorz.Op(kind)
			if op.Status != want {
				t.Errorf("got status %d, want %d", op.Status, want)
			}
		})
	}
}

func Test_Operation_Is(t *testing.T) {
	t.Run("ok, same kind matches", func(t *testing.T) {
		err := fmt.Errorf("consume: %w", errorz.OpDetail(errorz.KindInvalidToken, "no such token"))

		if !errors.Is(err, errorz.Op(errorz.KindInvalidToken)) {
			t.Errorf("expected kinds to match via errors.Is")
		}
	})

	t.Run("ok, different kind does not match", func(t *testing.T) {
		err := errorz.Op(errorz.KindInvalidToken)

		if errors.Is(err, errorz.Op(errorz.KindExpiredToken)) {
			t.Errorf("expected kinds to not match via errors.Is")
		}
	})
}

func Test_Operation_AsOperation(t *testing.T) {
	t.Run("ok, operation error passes through", func(t *testing.T) {
		in := errorz.OpDetail(errorz.KindInvalidPassword, "Must be at least 8 characters")
		got := errorz.AsOperation(fmt.Errorf("register: %w", in))

		if got != in {
			t.Errorf("expected the wrapped operation error, got %v", got)
		}
	})

	t.Run("ok, unexpected error becomes unknown", func(t *testing.T) {
		cause := errors.New("disk on fire")
		got := errorz.AsOperation(cause)

		if got.Kind != errorz.KindUnknown {
			t.Errorf("got kind %s, want %s", got.Kind, errorz.KindUnknown)
		}

		if got.Status != http.StatusInternalServerError {
			t.Errorf("got status %d, want %d", got.Status, http.StatusInternalServerError)
		}

		if !errors.Is(got, cause) {
			t.Errorf("expected the cause to stay in the error chain")
		}
	})
}
