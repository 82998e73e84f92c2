package stepwise

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver for OpenSoyArchive
	"github.com/zoobzio/astql/postgres"
	"github.com/zoobzio/soy"
)

// entriesTable is the audit table SoyArchive writes to.
const entriesTable = "thought_entries"

// SoyArchive implements Archive using soy for Postgres persistence.
type SoyArchive struct {
	entries *soy.Soy[Entry]
	db      *sqlx.DB
}

// NewSoyArchive creates a new soy-backed Archive.
func NewSoyArchive(db *sqlx.DB) (*SoyArchive, error) {
	renderer := postgres.New()

	entries, err := soy.New[Entry](db, entriesTable, renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s table: %w", entriesTable, err)
	}

	return &SoyArchive{
		entries: entries,
		db:      db,
	}, nil
}

// OpenSoyArchive connects to Postgres with the given DSN and wraps it.
func OpenSoyArchive(ctx context.Context, dsn string) (*SoyArchive, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect archive database: %w", err)
	}

	archive, err := NewSoyArchive(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return archive, nil
}

// ArchiveEntry inserts one entry.
func (a *SoyArchive) ArchiveEntry(ctx context.Context, entry Entry) error {
	if _, err := a.entries.Insert().Exec(ctx, &entry); err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

// SessionEntries loads a session's archived entries in recording order.
func (a *SoyArchive) SessionEntries(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := a.entries.Query().
		Where("session_id", "=", "session_id").
		OrderBy("sequence", "asc").
		Exec(ctx, map[string]any{"session_id": sessionID})
	if err != nil {
		return nil, fmt.Errorf("failed to get session entries: %w", err)
	}

	entries := make([]Entry, len(rows))
	for i, e := range rows {
		entries[i] = *e
	}
	return entries, nil
}

// Close closes the underlying database connection.
func (a *SoyArchive) Close() error {
	return a.db.Close()
}
