// Package session issues and verifies the bearer tokens that identify
// logged-in users. Tokens are stateless HS256 signed JWTs, verifying one
// does not hit the database.
package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/saaskit/saaskit/internal/account"
	"github.com/saaskit/saaskit/internal/email"
	"github.com/saaskit/saaskit/internal/errorz"
	"github.com/saaskit/saaskit/internal/krypto"
)

// ErrInvalidSession indicates a session token could not be verified.
var ErrInvalidSession = errors.New("invalid session")

// Config is the configuration for the session Service.
type Config struct {
	// SigningKey is the HS256 secret used to sign session tokens.
	SigningKey krypto.Key
	// TTL is the duration a session token is valid after login.
	TTL time.Duration
	// Issuer is put in the iss claim of signed tokens and checked
	// when verifying.
	Issuer string
}

// Service logs users in and verifies their session tokens.
type Service struct {
	store     account.Store
	passwords *account.PasswordService
	cfg       Config

	// comparisonHash is matched against when a login attempt names an
	// unknown email address. Without it an attacker could detect which
	// addresses have an account by timing login failures.
	comparisonHash krypto.Argon2Hash

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(store account.Store, passwords *account.PasswordService, cfg Config) (*Service, error) {
	comparisonHash, err := krypto.HashArgon2([]byte(uuid.NewString()))
	if err != nil {
		return nil, err
	}

	return &Service{
		store:          store,
		passwords:      passwords,
		cfg:            cfg,
		comparisonHash: comparisonHash,
		NowFunc:        time.Now,
	}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Login checks the provided credentials and returns a new session.
// Unknown email addresses and wrong passwords fail with the same error
// and comparable timing, callers can't tell which of the two was wrong.
func (s *Service) Login(ctx context.Context, addr email.Address, pwd account.Password) (account.Session, error) {
	users, err := s.store.FindUsers(ctx, &account.UserFilter{
		Emails: []email.Address{addr},
	})
	if err != nil {
		return account.Session{}, err
	}

	if len(users) != 1 {
		_ = pwd.Match(s.comparisonHash)
		return account.Session{}, errorz.Op(errorz.KindInvalidEmailOrPassword)
	}

	user := users[0]

	ok, err := s.passwords.IsValidPassword(ctx, user.ID, pwd)
	if err != nil {
		return account.Session{}, err
	}

	if !ok {
		return account.Session{}, errorz.Op(errorz.KindInvalidEmailOrPassword)
	}

	return s.issue(user.ID)
}

func (s *Service) issue(userID int) (account.Session, error) {
	now := s.NowFunc()
	expiresAt := now.Add(s.cfg.TTL)

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   strconv.Itoa(userID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.cfg.SigningKey.SecretValue())
	if err != nil {
		return account.Session{}, err
	}

	return account.Session{
		Token:     signed,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks the signature and expiry of a session token and returns
// the id of the user it was issued to.
func (s *Service) Verify(raw string) (int, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.NowFunc),
		jwt.WithExpirationRequired(),
	)

	var c claims
	_, err := parser.ParseWithClaims(raw, &c, func(_ *jwt.Token) (any, error) {
		return s.cfg.SigningKey.SecretValue(), nil
	})
	if err != nil {
		return 0, ErrInvalidSession
	}

	if c.Issuer != s.cfg.Issuer {
		return 0, ErrInvalidSession
	}

	userID, err := strconv.Atoi(c.Subject)
	if err != nil {
		return 0, ErrInvalidSession
	}

	return userID, nil
}
