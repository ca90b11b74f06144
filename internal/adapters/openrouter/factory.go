package openrouter

import (
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/config"
	"github.com/mikey/mail-agent/internal/core"
)

// Factory creates new instances of the OpenRouter summarizer
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for OpenRouter summarizers
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSummarizer creates a new OpenRouter summarizer
func (f *Factory) CreateSummarizer() (core.Summarizer, error) {
	routerCfg, err := f.cfg.GetOpenRouter()
	if err != nil {
		return nil, fmt.Errorf("failed to get OpenRouter config: %w", err)
	}
	if routerCfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter.api_key is not set")
	}

	clientCfg := openai.DefaultConfig(routerCfg.APIKey)
	clientCfg.BaseURL = routerCfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: routerCfg.Timeout}
	client := openai.NewClientWithConfig(clientCfg)

	return NewSummarizer(
		client,
		routerCfg.Model,
		routerCfg.MaxTokens,
		routerCfg.Temperature,
		f.logger,
	), nil
}
