package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/core"
)

// Summarizer is an implementation of the Summarizer interface using
// Amazon Bedrock
type Summarizer struct {
	client       *bedrockruntime.Client
	modelID      string
	maxTokens    int
	temperature  float32
	topP         float32
	logger       *zap.Logger
	promptFormat string
}

// NewSummarizer creates a new Bedrock summarizer
func NewSummarizer(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *Summarizer {
	return &Summarizer{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
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
	return "bedrock"
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (s *Summarizer) isAnthropicModel() bool {
	return strings.Contains(s.modelID, "anthropic")
}

// Summarize produces a short summary of one email
func (s *Summarizer) Summarize(ctx context.Context, from, subject, body string) (string, error) {
	prompt := fmt.Sprintf(s.promptFormat, from, subject, body)

	var payload []byte
	var err error

	if s.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        s.maxTokens,
			"temperature":       s.temperature,
			"top_p":             s.topP,
			"messages": []map[string]interface{}{
				{"role": "user", "content": prompt},
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  s.maxTokens,
			"temperature": s.temperature,
			"top_p":       s.topP,
		})
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := s.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &s.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		var throttled *types.ThrottlingException
		if errors.As(err, &throttled) {
			return "", fmt.Errorf("bedrock: %w", core.ErrRateLimited)
		}
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	var responseText string
	if s.isAnthropicModel() {
		var claudeResp struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(resp.Body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		if len(claudeResp.Content) == 0 {
			return "", fmt.Errorf("empty response from Bedrock model")
		}
		responseText = claudeResp.Content[0].Text
	} else {
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(resp.Body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		switch {
		case genericResp.Output != "":
			responseText = genericResp.Output
		case genericResp.Text != "":
			responseText = genericResp.Text
		case genericResp.Response != "":
			responseText = genericResp.Response
		default:
			responseText = string(resp.Body)
		}
	}

	return strings.TrimSpace(responseText), nil
}
