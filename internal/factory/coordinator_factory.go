package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/adapters/imapbox"
	"github.com/mikey/mail-agent/internal/config"
	"github.com/mikey/mail-agent/internal/core"
	"github.com/mikey/mail-agent/internal/patterns"
	"github.com/mikey/mail-agent/internal/utils"
)

// CoordinatorFactory assembles the run coordinator from configuration
type CoordinatorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCoordinatorFactory creates a new coordinator factory
func NewCoordinatorFactory(cfg *config.Config, logger *zap.Logger) *CoordinatorFactory {
	return &CoordinatorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCoordinator builds the coordinator with its classifier, tier
// chain, summary store and session factory
func (f *CoordinatorFactory) CreateCoordinator(
	chain *core.Chain,
	summaryStore core.SummaryStore,
) (*core.Coordinator, error) {
	accountCfgs, err := f.cfg.GetAccounts()
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	if len(accountCfgs) == 0 {
		return nil, fmt.Errorf("no accounts configured")
	}

	accounts := make([]core.Account, 0, len(accountCfgs))
	for _, acct := range accountCfgs {
		accounts = append(accounts, core.Account{
			Email:    acct.Email,
			Password: acct.Password,
			Host:     acct.IMAPHost,
			Port:     acct.IMAPPort,
			Enabled:  acct.Enabled,
		})
	}

	mailboxCfg, err := f.cfg.GetMailbox()
	if err != nil {
		return nil, fmt.Errorf("failed to get mailbox config: %w", err)
	}
	scanCfg := f.cfg.GetScan()
	sumCfg, err := f.cfg.GetSummarize()
	if err != nil {
		return nil, fmt.Errorf("failed to get summarize config: %w", err)
	}

	patternStore := patterns.NewStore(f.cfg.GetString("patterns.dir"), f.logger)
	classifier := core.NewClassifier(patternStore.Rules(), f.logger)

	sessions := imapbox.NewFactory(mailboxCfg.Timeout, f.logger)

	coordinator := core.NewCoordinator(
		accounts,
		sessions,
		classifier,
		chain,
		summaryStore,
		utils.NewTextProcessor(f.logger),
		core.CoordinatorConfig{
			Folder:        scanCfg.Folder,
			RecentLimit:   scanCfg.RecentLimit,
			UnreadLimit:   scanCfg.UnreadLimit,
			RetentionDays: scanCfg.RetentionDays,
			SpamFolders:   mailboxCfg.SpamFolders,
			TrashFolders:  mailboxCfg.TrashFolders,
			MaxBodyChars:  sumCfg.MaxBodyChars,
		},
		f.logger,
	)
	return coordinator, nil
}

// CreateChain builds the tier fallback chain
func (f *CoordinatorFactory) CreateChain(tiers []core.Summarizer) (*core.Chain, error) {
	sumCfg, err := f.cfg.GetSummarize()
	if err != nil {
		return nil, fmt.Errorf("failed to get summarize config: %w", err)
	}
	return core.NewChain(tiers, sumCfg.MessageDelay, sumCfg.RateLimitBackoff, f.logger), nil
}
