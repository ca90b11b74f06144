package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/mikey/mail-agent/internal/core"
)

// Summarizer is an implementation of the Summarizer interface using
// Google Gemini
type Summarizer struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	modelName    string
	logger       *zap.Logger
	promptFormat string
}

// NewSummarizer creates a new Gemini summarizer
func NewSummarizer(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	logger *zap.Logger,
) (*Summarizer, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Summarizer{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
		promptFormat: `Summarize the following email in 2-3 short sentences.
Focus on what the sender wants and any action required.

From: %s
Subject: %s
Body:
%s

Respond only with the summary and nothing else.`,
	}, nil
}

// Close closes the Gemini client
func (s *Summarizer) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Name returns the tier name
func (s *Summarizer) Name() string {
	return "gemini"
}

// Summarize produces a short summary of one email
func (s *Summarizer) Summarize(ctx context.Context, from, subject, body string) (string, error) {
	prompt := fmt.Sprintf(s.promptFormat, from, subject, body)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 429 {
			return "", fmt.Errorf("gemini: %w", core.ErrRateLimited)
		}
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])), nil
}
