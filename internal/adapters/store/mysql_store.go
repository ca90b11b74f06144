package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/core"
)

// MySQLStore is a MySQL implementation of the SummaryStore interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL summary store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS summaries (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			account VARCHAR(255) NOT NULL,
			sender VARCHAR(255) NOT NULL,
			subject TEXT NOT NULL,
			summary TEXT NOT NULL,
			tier VARCHAR(64) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			INDEX idx_created_at (created_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Save stores one summary entry
func (s *MySQLStore) Save(ctx context.Context, entry *core.SummaryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (account, sender, subject, summary, tier, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.Account, entry.From, entry.Subject, entry.Summary, entry.Tier, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}
	return nil
}

// Prune deletes summaries created before the cutoff and returns how many
// rows were removed
func (s *MySQLStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM summaries WHERE created_at < ?
	`, olderThan)
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
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
