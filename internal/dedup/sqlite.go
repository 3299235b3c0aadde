package dedup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists baselines so a restart does not re-announce items.
// All methods are safe for concurrent use.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (or creates) the database at path. ":memory:" is accepted.
func OpenSQLite(path string) (*SQLiteStore, error) {
	connStr := path
	if path == ":memory:" {
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS channel_baselines (
		channel_id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

const upsertBaseline = `
	INSERT INTO channel_baselines (channel_id, item_id, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(channel_id) DO UPDATE SET
		item_id = excluded.item_id,
		updated_at = excluded.updated_at
`

func (s *SQLiteStore) Seed(ctx context.Context, channelID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, upsertBaseline, channelID, itemID, time.Now().UTC()); err != nil {
		return fmt.Errorf("seed baseline: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CheckAndUpdate(ctx context.Context, channelID, itemID string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Unchanged, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var stored string
	err = tx.QueryRowContext(ctx,
		`SELECT item_id FROM channel_baselines WHERE channel_id = ?`, channelID).Scan(&stored)

	outcome := Changed
	switch {
	case errors.Is(err, sql.ErrNoRows):
		outcome = FirstSeen
	case err != nil:
		return Unchanged, fmt.Errorf("query baseline: %w", err)
	case stored == itemID:
		return Unchanged, nil
	}

	if _, err := tx.ExecContext(ctx, upsertBaseline, channelID, itemID, time.Now().UTC()); err != nil {
		return Unchanged, fmt.Errorf("update baseline: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Unchanged, fmt.Errorf("commit baseline: %w", err)
	}

	return outcome, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
