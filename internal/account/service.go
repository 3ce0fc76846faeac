package account

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/saaskit/saaskit/internal/email"
	"github.com/saaskit/saaskit/internal/errorz"
	"github.com/saaskit/saaskit/internal/krypto"
)

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticator logs users in after their credentials have been stored.
// It is invoked at the end of a successful registration.
type Authenticator interface {
	Login(ctx context.Context, addr email.Address, pwd Password) (Session, error)
}

// Emailer is used to send templated emails.
type Emailer interface {
	SendMessage(ctx context.Context, name string, recipient email.Address, data any) error
}

// ErrFunc is a function that handles errors reported by worker goroutines.
type ErrFunc func(error)

// ServiceConfig is the configuration for the Service.
type ServiceConfig struct {
	// WorkerTimeout is the max duration worker goroutines are allowed
	// to take before they are cancelled.
	WorkerTimeout time.Duration
}

// Service provides the main rules of the user lifecycle: creation,
// registration, updates and the password reset flow.
type Service struct {
	store      Store
	passwords  *PasswordService
	tokens     *TokenService
	auth       Authenticator
	emailer    Emailer
	wg         *sync.WaitGroup
	errHandler ErrFunc
	cfg        ServiceConfig

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(store Store, passwords *PasswordService, tokens *TokenService, auth Authenticator, emailer Emailer, errHandler ErrFunc, cfg ServiceConfig) *Service {
	return &Service{
		store:      store,
		passwords:  passwords,
		tokens:     tokens,
		auth:       auth,
		emailer:    emailer,
		wg:         &sync.WaitGroup{},
		errHandler: errHandler,
		cfg:        cfg,
		NowFunc:    time.Now,
	}
}

// Wait waits for all open workers to finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

// GetByID returns the user with the provided id.
func (s *Service) GetByID(ctx context.Context, id int) (User, error) {
	users, err := s.store.FindUsers(ctx, &UserFilter{
		IDs: []int{id},
	})
	if err != nil {
		return User{}, err
	}

	if len(users) != 1 {
		return User{}, errorz.Op(errorz.KindNotFound)
	}

	return users[0], nil
}

// CreateParams are the parameters for creating a user.
type CreateParams struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Create validates the email address and creates a new user. A
// uniqueness violation on the email column is translated to an
// EMAIL_IN_USE error, all other store errors pass through unchanged.
func (s *Service) Create(ctx context.Context, p CreateParams) (User, error) {
	addr, err := email.ParseAddress(p.Email)
	if err != nil {
		return User{}, errorz.OpWrap(errorz.KindInvalidEmail, err)
	}

	now := s.NowFunc()
	user := User{
		Email:     addr,
		Name:      p.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = inTx(ctx, s.store, func(tx Tx) error {
		return tx.CreateUser(&user)
	})
	if err != nil {
		if errors.Is(err, errorz.ErrUniqueViolated) {
			return User{}, errorz.OpWrap(errorz.KindEmailInUse, err)
		}
		return User{}, err
	}

	return user, nil
}

// RegisterParams are the parameters for registering a user.
type RegisterParams struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register validates the password strength, creates the user, stores
// the credential and finally logs the new user in. The password is
// validated before any persistence happens, a rejected registration
// leaves no partial writes behind.
func (s *Service) Register(ctx context.Context, p RegisterParams) (Session, error) {
	if err := ValidatePassword(p.Password); err != nil {
		return Session{}, err
	}

	pwd, err := ParsePassword(p.Password)
	if err != nil {
		return Session{}, errorz.OpWrap(errorz.KindInvalidPassword, err)
	}

	user, err := s.Create(ctx, CreateParams{
		Email: p.Email,
		Name:  p.Name,
	})
	if err != nil {
		return Session{}, err
	}

	err = s.passwords.SetPassword(ctx, user.ID, pwd)
	if err != nil {
		return Session{}, err
	}

	return s.auth.Login(ctx, user.Email, pwd)
}

// UpdateParams are the parameters for updating a user.
type UpdateParams struct {
	Name string `json:"name"`
}

// Update persists the merged record. An empty name is rejected before
// any store mutation.
func (s *Service) Update(ctx context.Context, user User, p UpdateParams) (User, error) {
	if p.Name == "" {
		return User{}, errorz.OpDetail(errorz.KindInvalidParameters, "name must have a value.")
	}

	user.Name = p.Name
	user.UpdatedAt = s.NowFunc()

	err := inTx(ctx, s.store, func(tx Tx) error {
		return tx.UpdateUser(&user)
	})
	if err != nil {
		return User{}, err
	}

	return user, nil
}

// ResetPasswordRequest is the data rendered into the reset email.
type ResetPasswordRequest struct {
	Name  string
	Token krypto.Token
}

// RequestPasswordReset requests a password reset for the user with the
// provided email address. The main work is done in a separate goroutine
// and no output is returned, by design: callers must not be able to
// tell whether an account exists, not even by timing differences.
func (s *Service) RequestPasswordReset(_ context.Context, addr email.Address) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		wCtx, cancel := context.WithTimeout(context.Background(), s.cfg.WorkerTimeout)
		defer cancel()

		err := s.startPasswordReset(wCtx, addr)
		if err != nil {
			s.errHandler(err)
			return
		}
	}()
}

func (s *Service) startPasswordReset(ctx context.Context, addr email.Address) error {
	users, err := s.store.FindUsers(ctx, &UserFilter{
		Emails: []email.Address{addr},
	})
	if err != nil {
		return err
	}

	if len(users) != 1 {
		return errorz.ErrNotFound
	}

	user := users[0]

	token, err := s.tokens.Create(ctx, TokenTypeResetPassword, user.ID)
	if err != nil {
		return err
	}

	// Sending could fail independently of the token creation. This is an
	// acceptable risk, if the user has not received the email they can
	// always request another reset.
	return s.emailer.SendMessage(ctx, "reset-password", addr, ResetPasswordRequest{
		Name:  user.Name,
		Token: token.Value,
	})
}

// ResetPasswordParams are the parameters for resetting a password.
type ResetPasswordParams struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword consumes the reset token and stores the new password.
// The password is validated before the token is consumed, so a rejected
// password does not burn the token.
func (s *Service) ResetPassword(ctx context.Context, p ResetPasswordParams) error {
	if err := ValidatePassword(p.Password); err != nil {
		return err
	}

	pwd, err := ParsePassword(p.Password)
	if err != nil {
		return errorz.OpWrap(errorz.KindInvalidPassword, err)
	}

	token, err := s.tokens.Consume(ctx, p.Token)
	if err != nil {
		return err
	}

	return s.passwords.SetPassword(ctx, token.UserID, pwd)
}
