package gemini

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/config"
	"github.com/mikey/mail-agent/internal/core"
)

// Factory creates new instances of the Gemini summarizer
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for Gemini summarizers
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSummarizer creates a new Gemini summarizer
func (f *Factory) CreateSummarizer() (core.Summarizer, error) {
	geminiCfg := f.cfg.GetGemini()
	if geminiCfg.APIKey == "" {
		return nil, fmt.Errorf("gemini.api_key is not set")
	}

	return NewSummarizer(
		geminiCfg.APIKey,
		geminiCfg.Model,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		f.logger,
	)
}
