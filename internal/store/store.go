// Package store persists watchlists, journal entries, alerts, portfolio lots
// and settings in a single SQLite database file.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS watchlists (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS watchlist_symbols (
	watchlist_id TEXT NOT NULL REFERENCES watchlists(id) ON DELETE CASCADE,
	symbol       TEXT NOT NULL,
	added_at     TIMESTAMP NOT NULL,
	PRIMARY KEY (watchlist_id, symbol)
);

CREATE TABLE IF NOT EXISTS journal_entries (
	id          TEXT PRIMARY KEY,
	symbol      TEXT NOT NULL,
	side        TEXT NOT NULL,
	quantity    REAL NOT NULL,
	entry_price REAL NOT NULL,
	exit_price  REAL,
	stop_loss   REAL,
	target      REAL,
	fees        REAL NOT NULL DEFAULT 0,
	notes       TEXT NOT NULL DEFAULT '',
	tags        TEXT NOT NULL DEFAULT '',
	opened_at   TIMESTAMP NOT NULL,
	closed_at   TIMESTAMP,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_journal_symbol ON journal_entries(symbol);

CREATE TABLE IF NOT EXISTS alerts (
	id           TEXT PRIMARY KEY,
	symbol       TEXT NOT NULL,
	kind         TEXT NOT NULL,
	threshold    REAL NOT NULL,
	active       INTEGER NOT NULL DEFAULT 1,
	triggered_at TIMESTAMP,
	created_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol);

CREATE TABLE IF NOT EXISTS lots (
	id             TEXT PRIMARY KEY,
	symbol         TEXT NOT NULL,
	quantity       REAL NOT NULL,
	cost_per_share REAL NOT NULL,
	acquired_at    TIMESTAMP NOT NULL,
	notes          TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_lots_symbol ON lots(symbol);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// Store wraps the SQLite database handle. All repository methods hang off it.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the SQLite database at path and applies the
// schema. WAL mode keeps the scheduler and the HTTP handlers from blocking
// each other on writes.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on&_loc=UTC", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, apperrors.NewStorageError("store", "open", err)
	}

	// A single connection sidesteps SQLITE_BUSY between pooled handles.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("store", "open", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("store", "migrate", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperrors.NewStorageError("store", "ping", err)
	}
	return nil
}

// joinTags flattens a tag list into the stored comma-separated form.
func joinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, ",")
}

// splitTags is the inverse of joinTags. An empty column yields an empty,
// non-nil slice so JSON encodes [] rather than null.
func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
