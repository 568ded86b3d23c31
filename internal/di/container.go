package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/config"
	"github.com/secureguard/phishguard/internal/core"
	"github.com/secureguard/phishguard/internal/factory"
	"github.com/secureguard/phishguard/internal/logging"
	"github.com/secureguard/phishguard/internal/ports"
	"github.com/secureguard/phishguard/internal/utils"
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
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIntelFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStorageFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewGatewayFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register content classifier
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.ContentClassifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register typosquatting detector
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *core.TyposquatDetector {
		protected := cfg.GetStringSlice("typosquat.protected_domains")
		if len(protected) > 0 {
			logger.Info("Loaded protected domains", zap.Strings("domains", protected))
		}
		return core.NewTyposquatDetector(protected)
	}); err != nil {
		return nil, err
	}

	// Register threat intelligence provider
	if err := container.Provide(func(f *factory.IntelFactory) (core.ThreatIntelProvider, error) {
		return f.CreateProvider()
	}); err != nil {
		return nil, err
	}

	// Register threat intelligence timeout
	if err := container.Provide(func(f *factory.IntelFactory) (time.Duration, error) {
		return f.GetIntelTimeout()
	}); err != nil {
		return nil, err
	}

	// Register incident repository
	if err := container.Provide(func(f *factory.StorageFactory) (core.IncidentRepository, error) {
		return f.CreateRepository()
	}); err != nil {
		return nil, err
	}

	// Register notifier
	if err := container.Provide(func(f *factory.NotifierFactory) (core.Notifier, error) {
		return f.CreateNotifier()
	}); err != nil {
		return nil, err
	}

	// Register analysis engine
	if err := container.Provide(core.NewAnalysisEngine); err != nil {
		return nil, err
	}

	// Register analysis service
	if err := container.Provide(core.NewAnalysisService); err != nil {
		return nil, err
	}

	// Register gateways
	if err := container.Provide(func(f *factory.GatewayFactory, service *core.AnalysisService) ([]ports.Gateway, error) {
		return f.CreateGateways(service)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
