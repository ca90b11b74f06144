// Package store persists email summaries across runs.
package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/core"
)

// MemoryStore is an in-memory implementation of the SummaryStore
// interface. Entries do not survive a restart; it exists for tests and
// for installs that do not care about history.
type MemoryStore struct {
	mu      sync.Mutex
	entries []core.SummaryEntry
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory summary store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{logger: logger}
}

// Save stores one summary entry
func (s *MemoryStore) Save(ctx context.Context, entry *core.SummaryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

// Prune deletes summaries created before the cutoff and returns how many
// entries were removed
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var removed int64
	for _, entry := range s.entries {
		if entry.CreatedAt.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	s.entries = kept
	return removed, nil
}

// Entries returns a copy of the stored entries
func (s *MemoryStore) Entries() []core.SummaryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.SummaryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
