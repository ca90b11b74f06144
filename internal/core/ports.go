package core

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRateLimited signals a provider-side throttling response; the tier
	// chain backs off and retries the same tier once before advancing.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrNoFolder is returned by a mailbox session when none of the
	// candidate folders accepted a move.
	ErrNoFolder = errors.New("no candidate folder accepted the move")
)

// MailboxSession defines the mailbox operations the coordinator needs.
// One session is opened per account per tick and closed afterwards.
// Implementations must retry any mutation once after a reconnect when the
// connection was lost mid-call.
type MailboxSession interface {
	// Connect opens the session
	Connect(ctx context.Context) error

	// Close terminates the session
	Close() error

	// FetchRecent returns the most recent messages, read and unread,
	// newest first, up to limit
	FetchRecent(ctx context.Context, folder string, limit int) ([]Message, error)

	// FetchUnread returns unread messages, newest first, up to limit
	FetchUnread(ctx context.Context, folder string, limit int) ([]Message, error)

	// MoveToFolder moves a message to the first candidate folder that
	// accepts it, falling back to a hard delete when none does
	MoveToFolder(ctx context.Context, uid uint32, candidates []string) error

	// MarkRead sets the seen flag on a message
	MarkRead(ctx context.Context, uid uint32) error

	// Delete flags a message as deleted
	Delete(ctx context.Context, uid uint32) error
}

// SessionFactory opens a mailbox session for one account
type SessionFactory interface {
	// NewSession creates an unconnected session for the given account
	NewSession(email, password, host string, port int) MailboxSession
}

// Summarizer defines one tier of the summarization fallback chain.
// All provider failures are reported as errors; rate limiting is signalled
// by wrapping ErrRateLimited.
type Summarizer interface {
	// Summarize produces a short natural-language summary of an email
	Summarize(ctx context.Context, from, subject, bodyPreview string) (string, error)

	// Name identifies the tier in logs and reports
	Name() string
}

// Reporter delivers a formatted run report to the operator channel
type Reporter interface {
	// Send delivers the report; failures are tolerated by the caller
	Send(ctx context.Context, report *RunReport) error
}

// SummaryStore persists summaries produced during a run
type SummaryStore interface {
	// Save stores one summary entry
	Save(ctx context.Context, entry *SummaryEntry) error

	// Prune removes entries created before the cutoff and reports how
	// many were removed
	Prune(ctx context.Context, olderThan time.Time) (int64, error)

	// Close releases any underlying resources
	Close() error
}
