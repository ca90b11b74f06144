package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/adapters/telegram"
	"github.com/mikey/mail-agent/internal/config"
	"github.com/mikey/mail-agent/internal/factory"
	"github.com/mikey/mail-agent/internal/logging"
)

var (
	folder      = flag.String("folder", "", "Mailbox folder to scan (overrides config)")
	recentLimit = flag.Int("recent-limit", 0, "Maintenance scan depth (overrides config)")
	unreadLimit = flag.Int("unread-limit", 0, "Unread scan depth (overrides config)")
	patternsDir = flag.String("patterns", "", "Pattern file directory (overrides config)")
	tiers       = flag.String("tiers", "", "Comma-separated summarizer tiers (overrides config)")
	sendReport  = flag.Bool("send", false, "Deliver the report to Telegram instead of stdout only")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog     = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.New()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	applyFlags(cfg)

	if err := runScan(cfg, logger); err != nil {
		logger.Fatal("Scan failed", zap.Error(err))
	}
}

// applyFlags overlays non-empty command line flags onto the configuration
func applyFlags(cfg *config.Config) {
	v := cfg.GetViper()
	if *folder != "" {
		v.Set("scan.folder", *folder)
	}
	if *recentLimit > 0 {
		v.Set("scan.recent_limit", *recentLimit)
	}
	if *unreadLimit > 0 {
		v.Set("scan.unread_limit", *unreadLimit)
	}
	if *patternsDir != "" {
		v.Set("patterns.dir", *patternsDir)
	}
	if *tiers != "" {
		names := strings.Split(*tiers, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		v.Set("summarize.tiers", names)
	}
}

func runScan(cfg *config.Config, logger *zap.Logger) error {
	summarizerFactory := factory.NewSummarizerFactory(cfg, logger)
	tierList, err := summarizerFactory.CreateTiers()
	if err != nil {
		return err
	}

	coordinatorFactory := factory.NewCoordinatorFactory(cfg, logger)
	chain, err := coordinatorFactory.CreateChain(tierList)
	if err != nil {
		return err
	}

	summaryStore, err := factory.NewStoreFactory(cfg, logger).CreateStore()
	if err != nil {
		return err
	}
	defer summaryStore.Close()

	coordinator, err := coordinatorFactory.CreateCoordinator(chain, summaryStore)
	if err != nil {
		return err
	}

	ctx := context.Background()
	report := coordinator.Run(ctx)

	reportCfg := cfg.GetReport()
	fmt.Println(telegram.FormatReport(report, reportCfg.MaxEmailsPerReport))

	if *sendReport {
		reporter, err := factory.NewReporterFactory(cfg, logger).CreateReporter()
		if err != nil {
			return err
		}
		return reporter.Send(ctx, report)
	}
	return nil
}
