package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/adapters/telegram"
	"github.com/mikey/mail-agent/internal/config"
	"github.com/mikey/mail-agent/internal/core"
)

// ReporterFactory creates report channels
type ReporterFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewReporterFactory creates a new reporter factory
func NewReporterFactory(cfg *config.Config, logger *zap.Logger) *ReporterFactory {
	return &ReporterFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateReporter creates the Telegram reporter
func (f *ReporterFactory) CreateReporter() (core.Reporter, error) {
	tgCfg := f.cfg.GetTelegram()
	if tgCfg.BotToken == "" {
		return nil, fmt.Errorf("telegram.bot_token is not set")
	}
	if tgCfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram.chat_id is not set")
	}

	reportCfg := f.cfg.GetReport()
	return telegram.NewReporter(tgCfg.BotToken, tgCfg.ChatID, reportCfg.MaxEmailsPerReport, f.logger)
}
