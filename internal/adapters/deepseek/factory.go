package deepseek

import (
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/config"
	"github.com/mikey/mail-agent/internal/core"
)

// Factory creates new instances of the DeepSeek summarizer
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for DeepSeek summarizers
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSummarizer creates a new DeepSeek summarizer
func (f *Factory) CreateSummarizer() (core.Summarizer, error) {
	dsCfg, err := f.cfg.GetDeepSeek()
	if err != nil {
		return nil, fmt.Errorf("failed to get DeepSeek config: %w", err)
	}
	if dsCfg.APIKey == "" {
		return nil, fmt.Errorf("deepseek.api_key is not set")
	}

	clientCfg := openai.DefaultConfig(dsCfg.APIKey)
	clientCfg.BaseURL = dsCfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: dsCfg.Timeout}
	client := openai.NewClientWithConfig(clientCfg)

	return NewSummarizer(
		client,
		dsCfg.Model,
		dsCfg.MaxTokens,
		dsCfg.Temperature,
		f.logger,
	), nil
}
