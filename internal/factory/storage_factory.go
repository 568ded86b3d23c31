package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/adapters/storage"
	"github.com/secureguard/phishguard/internal/config"
	"github.com/secureguard/phishguard/internal/core"
)

// StorageFactory creates incident repositories based on configuration
type StorageFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config, logger *zap.Logger) *StorageFactory {
	return &StorageFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRepository creates an incident repository based on the configuration
func (f *StorageFactory) CreateRepository() (core.IncidentRepository, error) {
	storageType := f.cfg.GetString("storage.type")

	switch storageType {
	case "memory":
		return storage.NewMemoryRepository(f.logger), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("storage.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return storage.NewSQLiteRepository(sqlitePath, f.logger)
	case "mysql":
		return storage.NewMySQLRepository(f.cfg.GetString("storage.mysql_dsn"), f.logger)
	case "postgres":
		return storage.NewPostgresRepository(f.cfg.GetString("storage.postgres_dsn"), f.logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
