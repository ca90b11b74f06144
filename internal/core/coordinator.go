package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/mail-agent/internal/utils"
	"go.uber.org/zap"
)

// Account holds the credentials for one mailbox to process
type Account struct {
	Email    string
	Password string
	Host     string
	Port     int
	Enabled  bool
}

// CoordinatorConfig holds the scan parameters for one run
type CoordinatorConfig struct {
	Folder        string
	RecentLimit   int
	UnreadLimit   int
	RetentionDays int
	SpamFolders   []string
	TrashFolders  []string
	MaxBodyChars  int
}

// Coordinator drives the two-pass scan across all accounts. Pass 1 sweeps
// the most recent messages, read and unread, applying spam/delete verdicts.
// Pass 2 walks the unread messages, applies any verdict not already applied
// in Pass 1, and summarizes what survives.
//
// Accounts are processed sequentially in configuration order; a failure in
// one account never aborts the run.
type Coordinator struct {
	accounts   []Account
	sessions   SessionFactory
	classifier *Classifier
	chain      *Chain
	store      SummaryStore
	text       *utils.TextProcessor
	cfg        CoordinatorConfig
	logger     *zap.Logger

	// now is swappable so tests can pin the retention cutoff
	now func() time.Time
}

// NewCoordinator creates a new run coordinator
func NewCoordinator(
	accounts []Account,
	sessions SessionFactory,
	classifier *Classifier,
	chain *Chain,
	store SummaryStore,
	text *utils.TextProcessor,
	cfg CoordinatorConfig,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		accounts:   accounts,
		sessions:   sessions,
		classifier: classifier,
		chain:      chain,
		store:      store,
		text:       text,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// SetNow replaces the clock. Used by tests.
func (co *Coordinator) SetNow(now func() time.Time) {
	co.now = now
}

// Run executes one full scan over all accounts and returns the accumulated
// report. Cancellation is honoured between accounts and between messages;
// already-applied mutations are not rolled back and the partial report is
// returned.
func (co *Coordinator) Run(ctx context.Context) *RunReport {
	report := NewRunReport()

	for _, acct := range co.accounts {
		if ctx.Err() != nil {
			co.logger.Info("Run cancelled, returning partial report")
			break
		}
		if !acct.Enabled {
			co.logger.Info("Skipping disabled account", zap.String("account", acct.Email))
			continue
		}

		if err := co.processAccount(ctx, acct, report); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				co.logger.Info("Run cancelled, returning partial report")
				break
			}
			// One broken account must not take the run down
			co.logger.Error("Account processing failed",
				zap.String("account", acct.Email),
				zap.Error(err))
		}
	}

	return report
}

func (co *Coordinator) processAccount(ctx context.Context, acct Account, report *RunReport) error {
	co.logger.Info("Processing account", zap.String("account", acct.Email))

	sess := co.sessions.NewSession(acct.Email, acct.Password, acct.Host, acct.Port)
	if err := sess.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer sess.Close()

	// UIDs moved or deleted in Pass 1, so Pass 2 never mutates them twice
	mutated := make(map[uint32]struct{})

	if err := co.maintenancePass(ctx, sess, acct, report, mutated); err != nil {
		return err
	}
	return co.unreadPass(ctx, sess, acct, report, mutated)
}

// maintenancePass scans the newest messages regardless of read state and
// applies spam/delete verdicts. Trusted and keep verdicts are only logged.
func (co *Coordinator) maintenancePass(
	ctx context.Context,
	sess MailboxSession,
	acct Account,
	report *RunReport,
	mutated map[uint32]struct{},
) error {
	recent, err := sess.FetchRecent(ctx, co.cfg.Folder, co.cfg.RecentLimit)
	if err != nil {
		return fmt.Errorf("maintenance scan fetch failed: %w", err)
	}
	co.logger.Info("Maintenance scan",
		zap.String("account", acct.Email),
		zap.Int("messages", len(recent)))

	for i := range recent {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := &recent[i]
		report.AllScanned++

		verdict := co.classifier.Classify(msg)
		switch verdict.Action {
		case ActionSpam:
			if err := sess.MoveToFolder(ctx, msg.UID, co.cfg.SpamFolders); err != nil {
				co.logger.Error("Failed to move message to spam",
					zap.Uint32("uid", msg.UID), zap.Error(err))
				continue
			}
			mutated[msg.UID] = struct{}{}
			report.AllSpam++
		case ActionDeleted:
			if err := sess.MoveToFolder(ctx, msg.UID, co.cfg.TrashFolders); err != nil {
				co.logger.Error("Failed to move message to trash",
					zap.Uint32("uid", msg.UID), zap.Error(err))
				continue
			}
			mutated[msg.UID] = struct{}{}
			report.AllDeleted++
		}
	}
	return nil
}

// unreadPass walks the unread messages: spam/delete verdicts are applied
// unless Pass 1 already did, stale messages are marked read without an AI
// call, and everything else is summarized. A message is summarized at most
// once per run; a failed summarization leaves the unread flag alone so a
// later run can retry.
func (co *Coordinator) unreadPass(
	ctx context.Context,
	sess MailboxSession,
	acct Account,
	report *RunReport,
	mutated map[uint32]struct{},
) error {
	unread, err := sess.FetchUnread(ctx, co.cfg.Folder, co.cfg.UnreadLimit)
	if err != nil {
		return fmt.Errorf("unread scan fetch failed: %w", err)
	}
	co.logger.Info("Unread scan",
		zap.String("account", acct.Email),
		zap.Int("messages", len(unread)))

	cutoff := co.now().AddDate(0, 0, -co.cfg.RetentionDays)

	for i := range unread {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := &unread[i]
		report.UnreadProcessed++

		verdict := co.classifier.Classify(msg)
		switch verdict.Action {
		case ActionSpam:
			report.SpamCount++
			report.SpamDetails = append(report.SpamDetails, FilterRecord{
				Account: acct.Email, From: msg.From, Subject: msg.Subject, Reason: verdict.Reason,
			})
			co.applyOnce(ctx, sess, msg.UID, co.cfg.SpamFolders, mutated)
		case ActionDeleted:
			report.DeletedCount++
			report.DeletedDetails = append(report.DeletedDetails, FilterRecord{
				Account: acct.Email, From: msg.From, Subject: msg.Subject, Reason: verdict.Reason,
			})
			co.applyOnce(ctx, sess, msg.UID, co.cfg.TrashFolders, mutated)
		case ActionTrusted, ActionKeep:
			co.summarizeMessage(ctx, sess, acct, msg, cutoff, report)
		}
	}
	return nil
}

// applyOnce moves a message unless Pass 1 already mutated it
func (co *Coordinator) applyOnce(
	ctx context.Context,
	sess MailboxSession,
	uid uint32,
	candidates []string,
	mutated map[uint32]struct{},
) {
	if _, done := mutated[uid]; done {
		return
	}
	if err := sess.MoveToFolder(ctx, uid, candidates); err != nil {
		co.logger.Error("Failed to move message", zap.Uint32("uid", uid), zap.Error(err))
		return
	}
	mutated[uid] = struct{}{}
}

func (co *Coordinator) summarizeMessage(
	ctx context.Context,
	sess MailboxSession,
	acct Account,
	msg *Message,
	cutoff time.Time,
	report *RunReport,
) {
	// Stale unread mail is not worth an AI call: mark read and move on
	if !msg.Date.IsZero() && msg.Date.Before(cutoff) {
		co.logger.Info("Skipping stale unread message",
			zap.Uint32("uid", msg.UID),
			zap.Time("date", msg.Date))
		if err := sess.MarkRead(ctx, msg.UID); err != nil {
			co.logger.Error("Failed to mark stale message read",
				zap.Uint32("uid", msg.UID), zap.Error(err))
		}
		return
	}

	preview := co.text.BodyPreview(msg.Body(), co.cfg.MaxBodyChars)
	summary, err := co.chain.Summarize(ctx, msg.From, msg.Subject, preview)
	if err != nil || summary.Text == "" {
		// Leave the message unread so the next run retries it
		co.logger.Warn("Summarization failed, leaving message unread",
			zap.Uint32("uid", msg.UID),
			zap.Error(err))
		return
	}

	if err := sess.MarkRead(ctx, msg.UID); err != nil {
		co.logger.Error("Failed to mark summarized message read",
			zap.Uint32("uid", msg.UID), zap.Error(err))
	}

	report.SummarizedCount++
	report.Summarized = append(report.Summarized, SummaryRecord{
		Account: acct.Email,
		From:    msg.From,
		Subject: msg.Subject,
		Summary: summary.Text,
	})

	if co.store != nil {
		entry := &SummaryEntry{
			Account:   acct.Email,
			From:      msg.From,
			Subject:   msg.Subject,
			Summary:   summary.Text,
			Tier:      summary.Tier,
			CreatedAt: summary.CreatedAt,
		}
		if err := co.store.Save(ctx, entry); err != nil {
			co.logger.Error("Failed to persist summary", zap.Error(err))
		}
	}
}
