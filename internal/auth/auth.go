package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourname/shortlink/internal/store"
)

// ErrInvalidInput rejects empty email or password.
var ErrInvalidInput = errors.New("email and password are required")

// hashCost is the bcrypt work factor for new accounts.
const hashCost = 10

// Service manages account identities. Passwords are bcrypt-hashed before
// they reach the store and never logged; only the hash is persisted.
type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// Signup registers a new account. Returns store.ErrAlreadyExists if the
// email is taken.
func (s *Service) Signup(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return err
	}
	return s.store.CreateAccount(ctx, email, string(hash), s.now())
}

// Login verifies email/password. An unknown email and a wrong password both
// come back as (false, nil); the caller cannot tell which. The hash compare
// is bcrypt's own constant-time comparison.
func (s *Service) Login(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, ErrInvalidInput
	}
	acct, err := s.store.FindAccount(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) == nil, nil
}
