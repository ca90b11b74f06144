package di

import (
	"go.uber.org/dig"

	"github.com/mikey/mail-agent/internal/config"
	"github.com/mikey/mail-agent/internal/core"
	"github.com/mikey/mail-agent/internal/factory"
	"github.com/mikey/mail-agent/internal/logging"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewSummarizerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewReporterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCoordinatorFactory); err != nil {
		return nil, err
	}

	// Register summarizer tiers
	if err := container.Provide(func(f *factory.SummarizerFactory) ([]core.Summarizer, error) {
		return f.CreateTiers()
	}); err != nil {
		return nil, err
	}

	// Register tier chain
	if err := container.Provide(func(f *factory.CoordinatorFactory, tiers []core.Summarizer) (*core.Chain, error) {
		return f.CreateChain(tiers)
	}); err != nil {
		return nil, err
	}

	// Register summary store
	if err := container.Provide(func(f *factory.StoreFactory) (core.SummaryStore, error) {
		return f.CreateStore()
	}); err != nil {
		return nil, err
	}

	// Register reporter
	if err := container.Provide(func(f *factory.ReporterFactory) (core.Reporter, error) {
		return f.CreateReporter()
	}); err != nil {
		return nil, err
	}

	// Register coordinator
	if err := container.Provide(func(f *factory.CoordinatorFactory, chain *core.Chain, store core.SummaryStore) (*core.Coordinator, error) {
		return f.CreateCoordinator(chain, store)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
