package account

import (
	"context"
	"time"

	"github.com/saaskit/saaskit/internal/errorz"
	"github.com/saaskit/saaskit/internal/krypto"
)

// TokenServiceConfig is the configuration for the TokenService.
type TokenServiceConfig struct {
	// TokenExpiry is the duration a token is valid after issuance.
	TokenExpiry time.Duration
}

// TokenService issues and consumes verification tokens.
type TokenService struct {
	store Store
	cfg   TokenServiceConfig

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewTokenService(store Store, cfg TokenServiceConfig) *TokenService {
	return &TokenService{
		store:   store,
		cfg:     cfg,
		NowFunc: time.Now,
	}
}

// Create issues a new verification token of the provided type for the
// user. The token value is cryptographically random with 256 bits of
// entropy and is unique across all tokens.
func (s *TokenService) Create(ctx context.Context, typ TokenType, userID int) (VerificationToken, error) {
	value, err := krypto.GenerateToken()
	if err != nil {
		return VerificationToken{}, err
	}

	now := s.NowFunc()
	token := VerificationToken{
		Value:     value,
		Type:      typ,
		UserID:    userID,
		ExpiresAt: now.Add(s.cfg.TokenExpiry),
		Consumed:  false,
		CreatedAt: now,
	}

	err = inTx(ctx, s.store, func(tx Tx) error {
		return tx.CreateToken(&token)
	})
	if err != nil {
		return VerificationToken{}, err
	}

	return token, nil
}

// Consume looks up the token with the provided value and marks it as
// consumed. It fails with an INVALID_TOKEN error if no token matches or
// the token was already consumed, and with an EXPIRED_TOKEN error if
// the token is past its expiry. The expiry check happens strictly
// before any mutation.
//
// The consumed flag is flipped with a conditional update inside the
// transaction, so a token is consumed at most once even when multiple
// redemption attempts race on the same value.
func (s *TokenService) Consume(ctx context.Context, value string) (VerificationToken, error) {
	parsed, err := krypto.ParseToken(value)
	if err != nil {
		// Values that can't even be parsed never match a stored token.
		return VerificationToken{}, errorz.Op(errorz.KindInvalidToken)
	}

	var out VerificationToken

	err = inTx(ctx, s.store, func(tx Tx) error {
		tokens, err := tx.FindTokens(&TokenFilter{
			Values: []krypto.Token{parsed},
		})
		if err != nil {
			return err
		}

		if len(tokens) != 1 {
			return errorz.Op(errorz.KindInvalidToken)
		}

		token := tokens[0]

		if token.Consumed {
			return errorz.Op(errorz.KindInvalidToken)
		}

		if token.Expired(s.NowFunc()) {
			return errorz.Op(errorz.KindExpiredToken)
		}

		ok, err := tx.ConsumeToken(token.Value)
		if err != nil {
			return err
		}

		if !ok {
			// Lost a race with a concurrent consume.
			return errorz.Op(errorz.KindInvalidToken)
		}

		token.Consumed = true
		out = token

		return nil
	})
	if err != nil {
		return VerificationToken{}, err
	}

	return out, nil
}
