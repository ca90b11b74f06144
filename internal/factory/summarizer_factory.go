package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/adapters/bedrock"
	"github.com/mikey/mail-agent/internal/adapters/deepseek"
	"github.com/mikey/mail-agent/internal/adapters/gemini"
	"github.com/mikey/mail-agent/internal/adapters/ollama"
	"github.com/mikey/mail-agent/internal/adapters/openrouter"
	"github.com/mikey/mail-agent/internal/config"
	"github.com/mikey/mail-agent/internal/core"
)

// SummarizerFactory resolves the configured tier list into summarizers
type SummarizerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSummarizerFactory creates a new summarizer factory
func NewSummarizerFactory(cfg *config.Config, logger *zap.Logger) *SummarizerFactory {
	return &SummarizerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSummarizer creates one summarizer by tier name
func (f *SummarizerFactory) CreateSummarizer(tier string) (core.Summarizer, error) {
	switch tier {
	case "ollama":
		return ollama.NewFactory(f.cfg, f.logger).CreateSummarizer()
	case "openrouter":
		return openrouter.NewFactory(f.cfg, f.logger).CreateSummarizer()
	case "deepseek":
		return deepseek.NewFactory(f.cfg, f.logger).CreateSummarizer()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger).CreateSummarizer()
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger).CreateSummarizer()
	default:
		return nil, fmt.Errorf("unsupported summarizer tier: %s", tier)
	}
}

// CreateTiers resolves summarize.tiers into an ordered summarizer list.
// A tier whose credentials are missing is skipped with a warning rather
// than aborting startup, so a partially configured install still runs
// with the tiers it has.
func (f *SummarizerFactory) CreateTiers() ([]core.Summarizer, error) {
	sumCfg, err := f.cfg.GetSummarize()
	if err != nil {
		return nil, fmt.Errorf("failed to get summarize config: %w", err)
	}

	var tiers []core.Summarizer
	for _, name := range sumCfg.Tiers {
		summarizer, err := f.CreateSummarizer(name)
		if err != nil {
			f.logger.Warn("Skipping summarizer tier",
				zap.String("tier", name),
				zap.Error(err))
			continue
		}
		tiers = append(tiers, summarizer)
	}

	if len(tiers) == 0 {
		return nil, fmt.Errorf("no usable summarizer tiers out of %v", sumCfg.Tiers)
	}
	return tiers, nil
}
