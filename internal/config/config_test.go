package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewFromViper(NewEmptyViper())

	scan := cfg.GetScan()
	if scan.Folder != "INBOX" {
		t.Errorf("scan.folder: got %q, want INBOX", scan.Folder)
	}
	if scan.RecentLimit != 100 || scan.UnreadLimit != 50 {
		t.Errorf("scan limits: got %d/%d, want 100/50", scan.RecentLimit, scan.UnreadLimit)
	}
	if scan.RetentionDays != 30 {
		t.Errorf("scan.retention_days: got %d, want 30", scan.RetentionDays)
	}

	sum, err := cfg.GetSummarize()
	if err != nil {
		t.Fatalf("GetSummarize failed: %v", err)
	}
	if sum.MessageDelay != time.Second {
		t.Errorf("summarize.message_delay: got %v, want 1s", sum.MessageDelay)
	}
	if sum.RateLimitBackoff != 45*time.Second {
		t.Errorf("summarize.rate_limit_backoff: got %v, want 45s", sum.RateLimitBackoff)
	}
	if len(sum.Tiers) != 4 || sum.Tiers[0] != "ollama" {
		t.Errorf("summarize.tiers: got %v", sum.Tiers)
	}

	sched, err := cfg.GetSchedule()
	if err != nil {
		t.Fatalf("GetSchedule failed: %v", err)
	}
	if sched.Interval != 6*time.Hour {
		t.Errorf("schedule interval: got %v, want 6h", sched.Interval)
	}
	if sched.TickTimeout != 30*time.Minute {
		t.Errorf("schedule.tick_timeout: got %v, want 30m", sched.TickTimeout)
	}

	mailbox, err := cfg.GetMailbox()
	if err != nil {
		t.Fatalf("GetMailbox failed: %v", err)
	}
	if len(mailbox.SpamFolders) == 0 || mailbox.SpamFolders[0] != "[Gmail]/Spam" {
		t.Errorf("mailbox.spam_folders: got %v", mailbox.SpamFolders)
	}
	if len(mailbox.TrashFolders) == 0 {
		t.Errorf("mailbox.trash_folders: got %v", mailbox.TrashFolders)
	}
}

func TestGetAccounts(t *testing.T) {
	t.Parallel()

	v := NewEmptyViper()
	v.Set("accounts", []map[string]interface{}{
		{
			"email":     "a@test",
			"password":  "pw",
			"imap_host": "imap.test",
			"imap_port": 993,
			"enabled":   true,
		},
		{
			"email":   "b@test",
			"enabled": false,
		},
	})
	cfg := NewFromViper(v)

	accounts, err := cfg.GetAccounts()
	if err != nil {
		t.Fatalf("GetAccounts failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("accounts: got %d, want 2", len(accounts))
	}
	if accounts[0].Email != "a@test" || accounts[0].IMAPHost != "imap.test" || accounts[0].IMAPPort != 993 {
		t.Errorf("accounts[0]: %+v", accounts[0])
	}
	if !accounts[0].Enabled || accounts[1].Enabled {
		t.Errorf("enabled flags: %v %v, want true false", accounts[0].Enabled, accounts[1].Enabled)
	}
}

func TestOverride(t *testing.T) {
	t.Parallel()

	v := NewEmptyViper()
	v.Set("scan.recent_limit", 10)
	cfg := NewFromViper(v)

	if got := cfg.GetScan().RecentLimit; got != 10 {
		t.Errorf("scan.recent_limit override: got %d, want 10", got)
	}
}
