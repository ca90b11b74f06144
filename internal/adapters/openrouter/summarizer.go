package openrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/core"
)

// Summarizer is an implementation of the Summarizer interface using
// OpenRouter's OpenAI-compatible API
type Summarizer struct {
	client       *openai.Client
	modelName    string
	maxTokens    int
	temperature  float32
	logger       *zap.Logger
	promptFormat string
}

// NewSummarizer creates a new OpenRouter summarizer
func NewSummarizer(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	logger *zap.Logger,
) *Summarizer {
	return &Summarizer{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
		promptFormat: `Summarize the following email in 2-3 short sentences.
Focus on what the sender wants and any action required.

From: %s
Subject: %s
Body:
%s

Respond only with the summary and nothing else.`,
	}
}

// Name returns the tier name
func (s *Summarizer) Name() string {
	return "openrouter"
}

// Summarize produces a short summary of one email
func (s *Summarizer) Summarize(ctx context.Context, from, subject, body string) (string, error) {
	prompt := fmt.Sprintf(s.promptFormat, from, subject, body)

	req := openai.ChatCompletionRequest{
		Model: s.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
			return "", fmt.Errorf("openrouter: %w", core.ErrRateLimited)
		}
		return "", fmt.Errorf("failed to create chat completion with OpenRouter: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenRouter")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
