package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Migrate ensures schema exists
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS links (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			short_id TEXT UNIQUE NOT NULL,
			destination TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_links_short_id ON links(short_id);`,
		`CREATE TABLE IF NOT EXISTS visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			link_id INTEGER NOT NULL,
			ts DATETIME NOT NULL,
			FOREIGN KEY(link_id) REFERENCES links(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_visits_link_id ON visits(link_id);`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) CreateLink(ctx context.Context, shortID, destination string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO links(short_id, destination, created_at, updated_at) VALUES(?, ?, ?, ?)`,
		shortID, destination, now.UTC(), now.UTC())
	return mapErr(err)
}

func (s *SQLite) ResolveAndRecord(ctx context.Context, shortID string, visit VisitEvent) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", mapErr(err)
	}
	defer tx.Rollback()

	var linkID int64
	var destination string
	err = tx.QueryRowContext(ctx,
		`SELECT id, destination FROM links WHERE short_id = ?`, shortID).
		Scan(&linkID, &destination)
	if err != nil {
		return "", mapErr(err)
	}

	ts := visit.Timestamp.UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO visits(link_id, ts) VALUES(?, ?)`, linkID, ts); err != nil {
		return "", mapErr(err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE links SET updated_at = ? WHERE id = ?`, ts, linkID); err != nil {
		return "", mapErr(err)
	}

	if err := tx.Commit(); err != nil {
		return "", mapErr(err)
	}
	return destination, nil
}

func (s *SQLite) CountVisits(ctx context.Context, shortID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(v.id)
		FROM links l
		LEFT JOIN visits v ON v.link_id = l.id
		WHERE l.short_id = ?
		GROUP BY l.id`, shortID).Scan(&n)
	if err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (s *SQLite) CreateAccount(ctx context.Context, email, passwordHash string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts(email, password_hash, created_at) VALUES(?, ?, ?)`,
		email, passwordHash, now.UTC())
	return mapErr(err)
}

func (s *SQLite) FindAccount(ctx context.Context, email string) (Account, error) {
	var a Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM accounts WHERE email = ?`, email).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return Account{}, mapErr(err)
	}
	return a, nil
}

// mapErr translates driver errors into the store taxonomy. A missing row is
// ErrNotFound, a unique-index violation is ErrAlreadyExists, and everything
// else (timeouts, locked database, closed pool) is ErrUnavailable so callers
// never mistake an outage for a miss.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrAlreadyExists
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

var _ Store = (*SQLite)(nil)
