package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/adapters/store"
	"github.com/mikey/mail-agent/internal/config"
	"github.com/mikey/mail-agent/internal/core"
)

// StoreFactory creates summary stores
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStore creates a summary store based on the configuration
func (f *StoreFactory) CreateStore() (core.SummaryStore, error) {
	storeType := f.cfg.GetString("store.type")

	switch storeType {
	case "memory":
		return store.NewMemoryStore(f.logger), nil
	case "sqlite":
		return store.NewSQLiteStore(f.cfg.GetString("store.sqlite_path"), f.logger)
	case "mysql":
		return store.NewMySQLStore(f.cfg.GetString("store.mysql_dsn"), f.logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}
