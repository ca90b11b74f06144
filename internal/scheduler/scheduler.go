// Package scheduler provides a generic periodic-execution driver. It
// holds no mailbox or provider knowledge; it only runs a callback on a
// fixed interval with a watchdog timeout per tick and a short cooldown
// after failures.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrTickTimeout is returned for a tick that exceeded its watchdog timeout
var ErrTickTimeout = errors.New("tick timed out")

// TickFunc is one unit of scheduled work
type TickFunc func(ctx context.Context) error

// Scheduler invokes a callback periodically until its context is
// cancelled. A failed tick is retried after the cooldown rather than the
// full interval; the scheduler itself never exits on a tick error.
type Scheduler struct {
	interval    time.Duration
	cooldown    time.Duration
	tickTimeout time.Duration
	logger      *zap.Logger
}

// New creates a scheduler. interval is the sleep between successful ticks,
// cooldown the sleep after a failed tick, and tickTimeout the watchdog
// limit for one tick.
func New(interval, cooldown, tickTimeout time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		interval:    interval,
		cooldown:    cooldown,
		tickTimeout: tickTimeout,
		logger:      logger,
	}
}

// Run executes the callback immediately, then on every interval, until ctx
// is cancelled.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) {
	s.logger.Info("Scheduler started",
		zap.Duration("interval", s.interval),
		zap.Duration("tick_timeout", s.tickTimeout))

	for {
		wait := s.interval
		if err := s.runTick(ctx, tick); err != nil {
			if ctx.Err() != nil {
				s.logger.Info("Scheduler stopped")
				return
			}
			s.logger.Error("Tick failed, retrying after cooldown",
				zap.Error(err),
				zap.Duration("cooldown", s.cooldown))
			wait = s.cooldown
		} else {
			s.logger.Info("Tick completed",
				zap.Time("next_run", time.Now().Add(s.interval)))
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		}
	}
}

// runTick runs one tick on a watched goroutine. On watchdog timeout the
// tick is abandoned: its context is cancelled and the scheduler moves on
// without waiting for stragglers beyond cancellation.
func (s *Scheduler) runTick(ctx context.Context, tick TickFunc) error {
	tickCtx, cancel := context.WithTimeout(ctx, s.tickTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- tick(tickCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-tickCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTickTimeout
	}
}
