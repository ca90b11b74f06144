package ollama

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/config"
	"github.com/mikey/mail-agent/internal/core"
)

// Factory creates Ollama summarizers
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new Ollama factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSummarizer creates a new Ollama summarizer
func (f *Factory) CreateSummarizer() (core.Summarizer, error) {
	ollamaCfg, err := f.cfg.GetOllama()
	if err != nil {
		return nil, fmt.Errorf("failed to get Ollama config: %w", err)
	}
	if ollamaCfg.URL == "" {
		return nil, fmt.Errorf("ollama.url is not set")
	}

	return NewSummarizer(ollamaCfg.URL, ollamaCfg.Model, ollamaCfg.Timeout, f.logger), nil
}
