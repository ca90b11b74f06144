package core

import (
	"time"
)

// Message represents one email message read from a mailbox session.
// Messages are never mutated locally; mark-read, move and delete are
// requests sent back to the session.
type Message struct {
	UID      uint32
	From     string
	Subject  string
	TextBody string
	HTMLBody string
	Date     time.Time
	Seen     bool
	Flags    []string
}

// Body returns the plain-text body, falling back to the HTML body when the
// message carries no text part.
func (m *Message) Body() string {
	if m.TextBody != "" {
		return m.TextBody
	}
	return m.HTMLBody
}

// Action is the classification outcome for one message
type Action string

const (
	ActionTrusted Action = "trusted"
	ActionSpam    Action = "spam"
	ActionDeleted Action = "deleted"
	ActionKeep    Action = "keep"
)

// Verdict represents a classification result with the rule that produced it
type Verdict struct {
	Action Action
	Reason string
}

// Summary represents a successful summarization result
type Summary struct {
	Text      string
	Tier      string
	CreatedAt time.Time
}

// SummaryEntry is a persisted summary record
type SummaryEntry struct {
	Account   string
	From      string
	Subject   string
	Summary   string
	Tier      string
	CreatedAt time.Time
}

// SummaryRecord is one summarized-message line in a run report
type SummaryRecord struct {
	Account string
	From    string
	Subject string
	Summary string
}

// FilterRecord is one spam/deleted line in a run report
type FilterRecord struct {
	Account string
	From    string
	Subject string
	Reason  string
}

// RunReport accumulates counters and detail records for one scheduler tick.
// A fresh report is created per tick and discarded after delivery.
type RunReport struct {
	Timestamp time.Time

	// Pass 1: maintenance scan over recent messages, read and unread
	AllScanned int
	AllSpam    int
	AllDeleted int

	// Pass 2: unread scan
	UnreadProcessed int
	SpamCount       int
	DeletedCount    int
	SummarizedCount int

	Summarized     []SummaryRecord
	SpamDetails    []FilterRecord
	DeletedDetails []FilterRecord
}

// NewRunReport creates an empty report stamped with the current time
func NewRunReport() *RunReport {
	return &RunReport{Timestamp: time.Now()}
}
