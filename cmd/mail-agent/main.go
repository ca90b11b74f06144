package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/config"
	"github.com/mikey/mail-agent/internal/core"
	"github.com/mikey/mail-agent/internal/di"
	"github.com/mikey/mail-agent/internal/scheduler"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	cfg *config.Config,
	coordinator *core.Coordinator,
	reporter core.Reporter,
	summaryStore core.SummaryStore,
) error {
	defer logger.Sync()
	defer summaryStore.Close()

	schedCfg, err := cfg.GetSchedule()
	if err != nil {
		return fmt.Errorf("failed to get schedule config: %w", err)
	}
	reportCfg := cfg.GetReport()
	retentionDays := cfg.GetInt("store.retention_days")

	// Cancel on SIGINT/SIGTERM; in-flight ticks observe the context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tick := newTick(coordinator.Run, summaryStore, reporter, reportCfg, retentionDays, logger)

	if !schedCfg.Enabled {
		logger.Info("Schedule disabled, running once")
		return tick(ctx)
	}

	logger.Info("Starting scheduler",
		zap.Duration("interval", schedCfg.Interval),
		zap.Duration("retry_cooldown", schedCfg.RetryCooldown))

	sched := scheduler.New(schedCfg.Interval, schedCfg.RetryCooldown, schedCfg.TickTimeout, logger)
	sched.Run(ctx, tick)

	logger.Info("Shutdown complete")
	return nil
}

// newTick builds one unit of scheduled work: scan, prune the summary
// store, deliver the report. A run whose context was cancelled, whether
// by shutdown or by the tick watchdog, discards its partial report. A
// report with no summaries is only delivered when always-send is on.
func newTick(
	run func(ctx context.Context) *core.RunReport,
	summaryStore core.SummaryStore,
	reporter core.Reporter,
	reportCfg config.ReportConfig,
	retentionDays int,
	logger *zap.Logger,
) scheduler.TickFunc {
	return func(ctx context.Context) error {
		report := run(ctx)
		if err := ctx.Err(); err != nil {
			logger.Warn("Run cancelled, discarding partial report", zap.Error(err))
			return err
		}

		if retentionDays > 0 {
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			if removed, err := summaryStore.Prune(ctx, cutoff); err != nil {
				logger.Error("Failed to prune summary store", zap.Error(err))
			} else if removed > 0 {
				logger.Info("Pruned summary store", zap.Int64("removed", removed))
			}
		}

		if report.SummarizedCount == 0 && !reportCfg.AlwaysSend {
			logger.Info("No summaries to report",
				zap.Int("scanned", report.AllScanned),
				zap.Int("unread", report.UnreadProcessed))
			return nil
		}
		return reporter.Send(ctx, report)
	}
}
