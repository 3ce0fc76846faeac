package krypto_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/saaskit/saaskit/internal/krypto"
)

func Test_Token_GenerateToken(t *testing.T) {
	t.Run("ok, tokens are unique and long enough", func(t *testing.T) {
		tok1, err := krypto.GenerateToken()
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		tok2, err := krypto.GenerateToken()
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		if tok1 == tok2 {
			t.Errorf("expected two generated tokens to differ")
		}

		if len(tok1.String()) <= 40 {
			t.Errorf("expected token string longer than 40 characters, got %d", len(tok1.String()))
		}
	})
}

func Test_Token_ParseToken(t *testing.T) {
	t.Run("ok, round trip", func(t *testing.T) {
		tok, err := krypto.GenerateToken()
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		got, err := krypto.ParseToken(tok.String())
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}

		if got != tok {
			t.Errorf("got\n%v\nwant\n%v\n", got, tok)
		}
	})

	failTests := map[string]string{
		"fail, empty":     "",
		"fail, too short": "abcdef",
		"fail, not hex":   "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
	}

	for name, raw := range failTests {
		t.Run(name, func(t *testing.T) {
			_, err := krypto.ParseToken(raw)
			if !errors.Is(err, krypto.ErrInvalidToken) {
				t.Errorf("expected %v, got %v (via errors.Is)", krypto.ErrInvalidToken, err)
			}
		})
	}
}

func Test_Token_Scan(t *testing.T) {
	t.Run("ok, scan string", func(t *testing.T) {
		tok, err := krypto.GenerateToken()
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		var got krypto.Token
		if err := got.Scan(tok.String()); err != nil {
			t.Fatalf("failed to scan token: %v", err)
		}

		if got != tok {
			t.Errorf("got\n%v\nwant\n%v\n", got, tok)
		}
	})

	t.Run("fail, not a string", func(t *testing.T) {
		var got krypto.Token
		if err := got.Scan(42); err == nil {
			t.Fatalf("expected error to be non-nil")
		}
	})
}

func Test_Token_NoSecretExposure(t *testing.T) {
	tok, err := krypto.GenerateToken()
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	got := fmt.Sprintf("%v", tok.LogValue())
	if got != krypto.SecretMarker {
		t.Errorf("expected log value to be the secret marker, got %q", got)
	}
}
