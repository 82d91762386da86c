package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yourname/shortlink/internal/store"
)

type fakeStore struct {
	mu       sync.Mutex
	accounts map[string]string // email -> password hash
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]string)}
}

func (f *fakeStore) CreateAccount(_ context.Context, email, hash string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[email]; ok {
		return store.ErrAlreadyExists
	}
	f.accounts[email] = hash
	return nil
}

func (f *fakeStore) FindAccount(_ context.Context, email string) (store.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hash, ok := f.accounts[email]
	if !ok {
		return store.Account{}, store.ErrNotFound
	}
	return store.Account{Email: email, PasswordHash: hash}, nil
}

// Unused link operations; auth never touches them.
func (f *fakeStore) CreateLink(context.Context, string, string, time.Time) error {
	return errors.New("not implemented")
}
func (f *fakeStore) ResolveAndRecord(context.Context, string, store.VisitEvent) (string, error) {
	return "", errors.New("not implemented")
}
func (f *fakeStore) CountVisits(context.Context, string) (int64, error) {
	return 0, errors.New("not implemented")
}

func TestSignupAndLogin(t *testing.T) {
	fs := newFakeStore()
	svc := NewService(fs)
	ctx := context.Background()

	if err := svc.Signup(ctx, "alex@example.com", "hunter2"); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	ok, err := svc.Login(ctx, "alex@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !ok {
		t.Error("expected successful login with correct password")
	}

	ok, err = svc.Login(ctx, "alex@example.com", "wrong")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if ok {
		t.Error("expected failed login with wrong password")
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewService(newFakeStore())

	ok, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if ok {
		t.Error("unknown email must not authenticate")
	}
}

func TestSignupValidation(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	cases := []struct{ email, password string }{
		{"", "secret"},
		{"alex@example.com", ""},
		{"", ""},
	}
	for _, c := range cases {
		if err := svc.Signup(ctx, c.email, c.password); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Signup(%q, %q): expected ErrInvalidInput, got %v", c.email, c.password, err)
		}
		if _, err := svc.Login(ctx, c.email, c.password); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Login(%q, %q): expected ErrInvalidInput, got %v", c.email, c.password, err)
		}
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	if err := svc.Signup(ctx, "alex@example.com", "one"); err != nil {
		t.Fatalf("first Signup: %v", err)
	}
	if err := svc.Signup(ctx, "alex@example.com", "two"); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestPasswordIsHashedBeforePersisting(t *testing.T) {
	fs := newFakeStore()
	svc := NewService(fs)

	if err := svc.Signup(context.Background(), "alex@example.com", "hunter2"); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	stored := fs.accounts["alex@example.com"]
	if stored == "hunter2" || strings.Contains(stored, "hunter2") {
		t.Fatal("plaintext password reached the store")
	}
	if !strings.HasPrefix(stored, "$2a$10$") {
		t.Errorf("expected bcrypt hash at cost 10, got %q", stored)
	}
}
