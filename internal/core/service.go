package core

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yourname/shortlink/internal/metrics"
	"github.com/yourname/shortlink/internal/shortid"
	"github.com/yourname/shortlink/internal/store"
)

var (
	// ErrCreationFailed means every generated identifier collided within the
	// bounded number of attempts. Rare; callers may retry the whole request.
	ErrCreationFailed = errors.New("could not allocate identifier")
	// ErrInvalidDestination rejects destinations that are not absolute
	// http/https URLs.
	ErrInvalidDestination = errors.New("invalid destination url")
)

// createAttempts bounds identifier regeneration on collision.
const createAttempts = 5

// Service is the link registry: it owns identifier allocation, redirect
// resolution with visit recording, and click-count aggregation. All
// durability and mutual exclusion live in the store.
type Service struct {
	store store.Store
	gen   func() string
	now   func() time.Time
}

func NewService(s store.Store) *Service {
	return &Service{
		store: s,
		gen:   shortid.Generate,
		now:   time.Now,
	}
}

// CreateLink persists a new link for destination and returns its identifier.
// The generator gives no uniqueness guarantee, so the unique index is the
// authority: on a duplicate we regenerate and retry up to createAttempts
// before giving up with ErrCreationFailed.
func (s *Service) CreateLink(ctx context.Context, destination string) (string, error) {
	dest, err := normalizeDestination(destination)
	if err != nil {
		return "", err
	}

	for i := 0; i < createAttempts; i++ {
		id := s.gen()
		err := s.store.CreateLink(ctx, id, dest, s.now())
		if err == nil {
			return id, nil
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			metrics.IDCollisions.Inc()
			log.Debug().Str("short_id", id).Msg("identifier collision, regenerating")
			continue
		}
		return "", err
	}
	return "", ErrCreationFailed
}

// Resolve returns the destination for shortID, recording the visit durably
// before the caller issues the redirect. Lookup and append are one store
// transaction so concurrent visits to the same link are never lost.
func (s *Service) Resolve(ctx context.Context, shortID string) (string, error) {
	return s.store.ResolveAndRecord(ctx, shortID, store.VisitEvent{Timestamp: s.now()})
}

// ClickCount reports recorded visits plus one, counting the view the caller
// is about to serve. The offset is part of the analytics contract.
func (s *Service) ClickCount(ctx context.Context, shortID string) (int64, error) {
	n, err := s.store.CountVisits(ctx, shortID)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

func normalizeDestination(u string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return "", ErrInvalidDestination
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrInvalidDestination
	}
	if parsed.Host == "" {
		return "", ErrInvalidDestination
	}
	return parsed.String(), nil
}
