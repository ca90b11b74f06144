package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/core"
)

// SQLiteStore is a SQLite implementation of the SummaryStore interface
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite summary store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			account TEXT NOT NULL,
			sender TEXT NOT NULL,
			subject TEXT NOT NULL,
			summary TEXT NOT NULL,
			tier TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_created_at ON summaries(created_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Save stores one summary entry
func (s *SQLiteStore) Save(ctx context.Context, entry *core.SummaryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (account, sender, subject, summary, tier, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.Account, entry.From, entry.Subject, entry.Summary, entry.Tier,
		entry.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}
	return nil
}

// Prune deletes summaries created before the cutoff and returns how many
// rows were removed
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM summaries WHERE created_at < ?
	`, olderThan.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to prune summaries: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned summaries: %w", err)
	}
	return removed, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
