// Package telegram delivers run reports to an operator chat.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/core"
)

// Reporter sends run reports through a Telegram bot
type Reporter struct {
	bot       *tgbotapi.BotAPI
	chatID    int64
	maxEmails int
	logger    *zap.Logger
}

// NewReporter creates a new Telegram reporter
func NewReporter(botToken string, chatID int64, maxEmails int, logger *zap.Logger) (*Reporter, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return &Reporter{
		bot:       bot,
		chatID:    chatID,
		maxEmails: maxEmails,
		logger:    logger,
	}, nil
}

// Send formats and delivers one run report. A cancelled context means
// the run was abandoned; its report is not delivered.
func (r *Reporter) Send(ctx context.Context, report *core.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := FormatReport(report, r.maxEmails)

	msg := tgbotapi.NewMessage(r.chatID, text)
	if _, err := r.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send Telegram report: %w", err)
	}

	r.logger.Info("Report delivered",
		zap.Int64("chat_id", r.chatID),
		zap.Int("summarized", report.SummarizedCount))
	return nil
}

// FormatReport renders a run report as plain text. Detail sections are
// capped at maxEmails entries each; remaining entries collapse into a
// trailing count line.
func FormatReport(report *core.RunReport, maxEmails int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Mail report %s\n\n", report.Timestamp.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Maintenance: %d scanned, %d spam, %d deleted\n",
		report.AllScanned, report.AllSpam, report.AllDeleted)
	fmt.Fprintf(&b, "Unread: %d processed, %d spam, %d deleted, %d summarized\n",
		report.UnreadProcessed, report.SpamCount, report.DeletedCount, report.SummarizedCount)

	if len(report.Summarized) > 0 {
		b.WriteString("\nSummaries:\n")
		for i, rec := range report.Summarized {
			if maxEmails > 0 && i >= maxEmails {
				fmt.Fprintf(&b, "... and %d more\n", len(report.Summarized)-maxEmails)
				break
			}
			fmt.Fprintf(&b, "- %s | %s\n  %s\n", rec.From, rec.Subject, rec.Summary)
		}
	}

	writeFilterSection(&b, "Spam", report.SpamDetails, maxEmails)
	writeFilterSection(&b, "Deleted", report.DeletedDetails, maxEmails)

	return strings.TrimRight(b.String(), "\n")
}

func writeFilterSection(b *strings.Builder, title string, records []core.FilterRecord, maxEmails int) {
	if len(records) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for i, rec := range records {
		if maxEmails > 0 && i >= maxEmails {
			fmt.Fprintf(b, "... and %d more\n", len(records)-maxEmails)
			return
		}
		fmt.Fprintf(b, "- %s | %s (%s)\n", rec.From, rec.Subject, rec.Reason)
	}
}
