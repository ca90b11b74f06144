// Package ollama implements the local-model summarization tier over the
// Ollama HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/core"
)

// Summarizer is an implementation of the Summarizer interface using a
// local Ollama server
type Summarizer struct {
	httpClient   *http.Client
	url          string
	modelName    string
	logger       *zap.Logger
	promptFormat string
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// NewSummarizer creates a new Ollama summarizer
func NewSummarizer(url, modelName string, timeout time.Duration, logger *zap.Logger) *Summarizer {
	return &Summarizer{
		httpClient: &http.Client{Timeout: timeout},
		url:        strings.TrimRight(url, "/"),
		modelName:  modelName,
		logger:     logger,
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
	return "ollama"
}

// Summarize produces a short summary of one email
func (s *Summarizer) Summarize(ctx context.Context, from, subject, body string) (string, error) {
	prompt := fmt.Sprintf(s.promptFormat, from, subject, body)

	payload, err := json.Marshal(generateRequest{
		Model:  s.modelName,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("ollama: %w", core.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unexpected status %d from Ollama: %s", resp.StatusCode, respBody)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode Ollama response: %w", err)
	}

	return strings.TrimSpace(genResp.Response), nil
}
