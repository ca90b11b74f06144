package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/utils"
)

// fakeSession is an in-memory mailbox for coordinator tests. It records
// every mutation so tests can assert exactly what the coordinator did.
type fakeSession struct {
	recent []Message
	unread []Message

	connectErr error
	fetchErr   error

	moved      map[uint32][]string
	markedRead []uint32
	closed     bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{moved: make(map[uint32][]string)}
}

func (f *fakeSession) Connect(ctx context.Context) error { return f.connectErr }
func (f *fakeSession) Close() error                      { f.closed = true; return nil }

func (f *fakeSession) FetchRecent(ctx context.Context, folder string, limit int) ([]Message, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.recent, nil
}

func (f *fakeSession) FetchUnread(ctx context.Context, folder string, limit int) ([]Message, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.unread, nil
}

func (f *fakeSession) MoveToFolder(ctx context.Context, uid uint32, candidates []string) error {
	f.moved[uid] = append(f.moved[uid], candidates[0])
	return nil
}

func (f *fakeSession) MarkRead(ctx context.Context, uid uint32) error {
	f.markedRead = append(f.markedRead, uid)
	return nil
}

func (f *fakeSession) Delete(ctx context.Context, uid uint32) error { return nil }

// fakeSessionFactory hands out a fixed session per account email
type fakeSessionFactory struct {
	sessions map[string]*fakeSession
}

func (f *fakeSessionFactory) NewSession(email, password, host string, port int) MailboxSession {
	return f.sessions[email]
}

func testCoordinator(t *testing.T, sessions map[string]*fakeSession, accounts []Account, chain *Chain, store SummaryStore) *Coordinator {
	t.Helper()
	logger := zap.NewNop()
	return NewCoordinator(
		accounts,
		&fakeSessionFactory{sessions: sessions},
		NewClassifier(testRules(), logger),
		chain,
		store,
		utils.NewTextProcessor(logger),
		CoordinatorConfig{
			Folder:        "INBOX",
			RecentLimit:   100,
			UnreadLimit:   50,
			RetentionDays: 30,
			SpamFolders:   []string{"Spam"},
			TrashFolders:  []string{"Trash"},
			MaxBodyChars:  1500,
		},
		logger,
	)
}

func instantChain(tiers ...Summarizer) *Chain {
	chain := NewChain(tiers, time.Second, 45*time.Second, zap.NewNop())
	chain.SetSleep(func(ctx context.Context, d time.Duration) {})
	return chain
}

func enabledAccount(email string) Account {
	return Account{Email: email, Password: "pw", Host: "imap.test", Port: 993, Enabled: true}
}

func TestRunTwoPassCounts(t *testing.T) {
	t.Parallel()

	now := time.Now()
	sess := newFakeSession()
	sess.recent = []Message{
		{UID: 1, From: "promo@deals.example", Subject: "sale", Date: now, Seen: true},
		{UID: 2, From: "digest@newsletters.example", Subject: "weekly", Date: now, Seen: true},
		{UID: 3, From: "friend@ok.example", Subject: "lunch", Date: now, Seen: true},
	}
	sess.unread = []Message{
		{UID: 4, From: "friend@ok.example", Subject: "dinner", TextBody: "tonight?", Date: now},
		{UID: 5, From: "x@spamhub.example", Subject: "pills", Date: now},
	}

	tier := &fakeSummarizer{name: "tier1", results: []fakeResult{{text: "dinner invite"}}}
	co := testCoordinator(t, map[string]*fakeSession{"a@test": sess}, []Account{enabledAccount("a@test")}, instantChain(tier), nil)

	report := co.Run(context.Background())

	if report.AllScanned != 3 {
		t.Errorf("AllScanned: got %d, want 3", report.AllScanned)
	}
	if report.AllSpam != 1 || report.AllDeleted != 1 {
		t.Errorf("maintenance counts: spam %d deleted %d, want 1 and 1", report.AllSpam, report.AllDeleted)
	}
	if report.UnreadProcessed != 2 {
		t.Errorf("UnreadProcessed: got %d, want 2", report.UnreadProcessed)
	}
	if report.SpamCount != 1 {
		t.Errorf("SpamCount: got %d, want 1", report.SpamCount)
	}
	if report.SummarizedCount != 1 {
		t.Errorf("SummarizedCount: got %d, want 1", report.SummarizedCount)
	}
	if len(report.Summarized) != 1 || report.Summarized[0].Summary != "dinner invite" {
		t.Errorf("Summarized: got %+v", report.Summarized)
	}
	if got := sess.moved[1]; len(got) != 1 || got[0] != "Spam" {
		t.Errorf("uid 1 moves: got %v, want [Spam]", got)
	}
	if got := sess.moved[2]; len(got) != 1 || got[0] != "Trash" {
		t.Errorf("uid 2 moves: got %v, want [Trash]", got)
	}
	if len(sess.markedRead) != 1 || sess.markedRead[0] != 4 {
		t.Errorf("markedRead: got %v, want [4]", sess.markedRead)
	}
	if !sess.closed {
		t.Error("session was not closed")
	}
}

func TestRunNoDoubleMutationAcrossPasses(t *testing.T) {
	t.Parallel()

	now := time.Now()
	// Same unread spam message shows up in both passes
	spam := Message{UID: 7, From: "x@spamhub.example", Subject: "pills", Date: now}
	sess := newFakeSession()
	sess.recent = []Message{spam}
	sess.unread = []Message{spam}

	co := testCoordinator(t, map[string]*fakeSession{"a@test": sess}, []Account{enabledAccount("a@test")}, instantChain(), nil)
	report := co.Run(context.Background())

	if got := sess.moved[7]; len(got) != 1 {
		t.Errorf("uid 7 was moved %d times, want exactly once", len(got))
	}
	// Pass 2 still counts and reports it
	if report.SpamCount != 1 || len(report.SpamDetails) != 1 {
		t.Errorf("unread spam accounting: count %d details %d", report.SpamCount, len(report.SpamDetails))
	}
}

func TestRunStaleUnreadMarkedReadWithoutSummarizing(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sess := newFakeSession()
	sess.unread = []Message{
		{UID: 10, From: "friend@ok.example", Subject: "old news", Date: fixed.AddDate(0, 0, -45)},
		{UID: 11, From: "friend@ok.example", Subject: "fresh", TextBody: "hi", Date: fixed.AddDate(0, 0, -10)},
	}

	tier := &fakeSummarizer{name: "tier1", results: []fakeResult{{text: "a fresh note"}}}
	co := testCoordinator(t, map[string]*fakeSession{"a@test": sess}, []Account{enabledAccount("a@test")}, instantChain(tier), nil)
	co.SetNow(func() time.Time { return fixed })

	report := co.Run(context.Background())

	if report.SummarizedCount != 1 {
		t.Fatalf("SummarizedCount: got %d, want 1 (stale message must not reach the chain)", report.SummarizedCount)
	}
	if report.Summarized[0].Subject != "fresh" {
		t.Errorf("summarized subject: got %q, want fresh", report.Summarized[0].Subject)
	}
	// Both ended up read: one summarized, one aged out
	if len(sess.markedRead) != 2 {
		t.Errorf("markedRead: got %v, want both uids", sess.markedRead)
	}
}

func TestRunFailedSummarizationLeavesUnread(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.unread = []Message{
		{UID: 20, From: "friend@ok.example", Subject: "hello", TextBody: "hi", Date: time.Now()},
	}

	tier := &fakeSummarizer{name: "tier1", results: []fakeResult{{err: errors.New("provider down")}}}
	co := testCoordinator(t, map[string]*fakeSession{"a@test": sess}, []Account{enabledAccount("a@test")}, instantChain(tier), nil)

	report := co.Run(context.Background())

	if report.SummarizedCount != 0 {
		t.Errorf("SummarizedCount: got %d, want 0", report.SummarizedCount)
	}
	if len(sess.markedRead) != 0 {
		t.Errorf("markedRead: got %v, want none (message stays unread for the next run)", sess.markedRead)
	}
}

func TestRunDisabledAccountSkipped(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.unread = []Message{{UID: 1, From: "friend@ok.example", Subject: "hi", Date: time.Now()}}

	disabled := enabledAccount("off@test")
	disabled.Enabled = false

	co := testCoordinator(t, map[string]*fakeSession{"off@test": sess}, []Account{disabled}, instantChain(), nil)
	report := co.Run(context.Background())

	if report.UnreadProcessed != 0 {
		t.Errorf("UnreadProcessed: got %d, want 0", report.UnreadProcessed)
	}
}

func TestRunAccountFailureDoesNotAbortRun(t *testing.T) {
	t.Parallel()

	broken := newFakeSession()
	broken.connectErr = errors.New("connection refused")

	healthy := newFakeSession()
	healthy.unread = []Message{
		{UID: 1, From: "friend@ok.example", Subject: "hi", TextBody: "text", Date: time.Now()},
	}

	tier := &fakeSummarizer{name: "tier1", results: []fakeResult{{text: "summary"}}}
	co := testCoordinator(t,
		map[string]*fakeSession{"broken@test": broken, "ok@test": healthy},
		[]Account{enabledAccount("broken@test"), enabledAccount("ok@test")},
		instantChain(tier), nil)

	report := co.Run(context.Background())

	if report.SummarizedCount != 1 {
		t.Errorf("SummarizedCount: got %d, want 1 (second account must still run)", report.SummarizedCount)
	}
}

func TestRunCancellationReturnsPartialReport(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.recent = []Message{{UID: 1, From: "promo@deals.example", Subject: "sale", Date: time.Now()}}

	co := testCoordinator(t, map[string]*fakeSession{"a@test": sess}, []Account{enabledAccount("a@test")}, instantChain(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := co.Run(ctx)
	if report == nil {
		t.Fatal("Run returned nil report on cancellation")
	}
	if report.AllScanned != 0 {
		t.Errorf("AllScanned: got %d, want 0", report.AllScanned)
	}
}

func TestRunPersistsSummaries(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	sess.unread = []Message{
		{UID: 1, From: "friend@ok.example", Subject: "hi", TextBody: "text", Date: time.Now()},
	}

	storeRec := &recordingStore{}
	tier := &fakeSummarizer{name: "tier1", results: []fakeResult{{text: "stored summary"}}}
	co := testCoordinator(t, map[string]*fakeSession{"a@test": sess}, []Account{enabledAccount("a@test")}, instantChain(tier), storeRec)

	co.Run(context.Background())

	if len(storeRec.saved) != 1 {
		t.Fatalf("store saved %d entries, want 1", len(storeRec.saved))
	}
	entry := storeRec.saved[0]
	if entry.Summary != "stored summary" || entry.Tier != "tier1" || entry.Account != "a@test" {
		t.Errorf("saved entry: %+v", entry)
	}
}

type recordingStore struct {
	saved []SummaryEntry
}

func (r *recordingStore) Save(ctx context.Context, entry *SummaryEntry) error {
	r.saved = append(r.saved, *entry)
	return nil
}

func (r *recordingStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

func (r *recordingStore) Close() error { return nil }
