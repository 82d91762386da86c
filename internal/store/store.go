package store

import (
	"context"
	"errors"
	"time"
)

type Link struct {
	ID          int64
	ShortID     string
	Destination string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type VisitEvent struct {
	Timestamp time.Time
}

type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnavailable   = errors.New("store unavailable")
)

type Store interface {
	// CreateLink inserts a new link with an empty visit history.
	// Returns ErrAlreadyExists if shortID is already taken.
	CreateLink(ctx context.Context, shortID, destination string, now time.Time) error

	// ResolveAndRecord returns the destination for shortID and durably
	// appends visit to its history, as a single atomic operation.
	// Concurrent calls for the same shortID each record their own event.
	ResolveAndRecord(ctx context.Context, shortID string, visit VisitEvent) (string, error)

	// CountVisits returns the number of recorded visit events for shortID.
	// Returns ErrNotFound if no such link exists.
	CountVisits(ctx context.Context, shortID string) (int64, error)

	// CreateAccount inserts a new account. Returns ErrAlreadyExists if the
	// email is already registered.
	CreateAccount(ctx context.Context, email, passwordHash string, now time.Time) error

	// FindAccount looks an account up by email.
	FindAccount(ctx context.Context, email string) (Account, error)
}
