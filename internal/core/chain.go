package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrChainExhausted is wrapped around the last tier's error when every
// tier in the chain failed.
var ErrChainExhausted = errors.New("all summarization tiers failed")

// Chain tries an ordered list of summarizer tiers until one succeeds.
// The tier list is resolved once from configuration; the chain never
// branches on provider identity.
type Chain struct {
	tiers            []Summarizer
	messageDelay     time.Duration
	rateLimitBackoff time.Duration
	logger           *zap.Logger

	// sleep is swappable so tests can observe the delays without waiting
	sleep func(ctx context.Context, d time.Duration)
}

// NewChain creates a tier chain. messageDelay is applied before every
// summarization attempt to avoid provider-side throttling; on a rate-limit
// error the same tier is retried exactly once after rateLimitBackoff.
func NewChain(tiers []Summarizer, messageDelay, rateLimitBackoff time.Duration, logger *zap.Logger) *Chain {
	return &Chain{
		tiers:            tiers,
		messageDelay:     messageDelay,
		rateLimitBackoff: rateLimitBackoff,
		logger:           logger,
		sleep:            sleepCtx,
	}
}

// SetSleep replaces the sleep hook. Used by tests.
func (c *Chain) SetSleep(sleep func(ctx context.Context, d time.Duration)) {
	c.sleep = sleep
}

// Summarize runs the tier chain for one message. The first tier returning
// a non-error result wins; later tiers are never invoked. When every tier
// fails the last error is returned wrapped in ErrChainExhausted.
func (c *Chain) Summarize(ctx context.Context, from, subject, bodyPreview string) (Summary, error) {
	if len(c.tiers) == 0 {
		return Summary{}, fmt.Errorf("%w: no tiers configured", ErrChainExhausted)
	}

	// Fixed inter-message delay, part of the contract
	c.sleep(ctx, c.messageDelay)

	var lastErr error
	for _, tier := range c.tiers {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}

		text, err := c.trySummarize(ctx, tier, from, subject, bodyPreview)
		if err == nil {
			return Summary{Text: text, Tier: tier.Name(), CreatedAt: time.Now()}, nil
		}

		c.logger.Warn("Summarization tier failed",
			zap.String("tier", tier.Name()),
			zap.Error(err))
		lastErr = err
	}

	return Summary{}, fmt.Errorf("%w: %w", ErrChainExhausted, lastErr)
}

// trySummarize calls one tier, retrying once after a backoff when the
// provider reports rate limiting.
func (c *Chain) trySummarize(ctx context.Context, tier Summarizer, from, subject, bodyPreview string) (string, error) {
	text, err := tier.Summarize(ctx, from, subject, bodyPreview)
	if err == nil {
		return text, nil
	}
	if !errors.Is(err, ErrRateLimited) {
		return "", err
	}

	c.logger.Info("Tier rate limited, backing off",
		zap.String("tier", tier.Name()),
		zap.Duration("backoff", c.rateLimitBackoff))
	c.sleep(ctx, c.rateLimitBackoff)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}

	return tier.Summarize(ctx, from, subject, bodyPreview)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
