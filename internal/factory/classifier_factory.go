package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/adapters/bedrock"
	"github.com/secureguard/phishguard/internal/adapters/classifier"
	"github.com/secureguard/phishguard/internal/adapters/gemini"
	"github.com/secureguard/phishguard/internal/adapters/openai"
	"github.com/secureguard/phishguard/internal/config"
	"github.com/secureguard/phishguard/internal/core"
	"github.com/secureguard/phishguard/internal/utils"
)

// ClassifierFactory creates content classifiers
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a content classifier based on the configuration
func (f *ClassifierFactory) CreateClassifier() (core.ContentClassifier, error) {
	classifierCfg := f.cfg.GetClassifier()

	switch classifierCfg.Provider {
	case "bayes":
		return classifier.NewBayesClassifier(f.logger), nil
	case "openai":
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifier()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifier()
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifier()
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", classifierCfg.Provider)
	}
}
