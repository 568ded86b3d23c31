package gemini

import (
	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/config"
	"github.com/secureguard/phishguard/internal/core"
	"github.com/secureguard/phishguard/internal/utils"
)

// Factory creates new instances of the Gemini classifier
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for Gemini classifier instances
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a new Gemini-backed ContentClassifier
func (f *Factory) CreateClassifier() (core.ContentClassifier, error) {
	geminiCfg := f.cfg.GetGemini()
	return NewClassifier(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	)
}
