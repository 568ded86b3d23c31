package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/adapters/storage"
	"github.com/secureguard/phishguard/internal/config"
	"github.com/secureguard/phishguard/internal/core"
	"github.com/secureguard/phishguard/internal/factory"
	"github.com/secureguard/phishguard/internal/logging"
	"github.com/secureguard/phishguard/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Classifier flags
	Classifier  string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Threat intelligence flags
	IntelProvider   string
	IntelFailPolicy string
	IntelTimeout    string
	SafeBrowsingKey string
	VirusTotalKey   string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Classifier flags
	flag.StringVar(&flags.Classifier, "classifier", "bayes", "Content classifier (bayes, openai, gemini, bedrock)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for LLM generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	flag.IntVar(&flags.MaxBodySize, "max-body-size", 4096, "Maximum email body size to send to LLM")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4", "OpenAI model name")

	// Threat intelligence flags
	flag.StringVar(&flags.IntelProvider, "intel", "safebrowsing", "Threat intelligence provider (safebrowsing, virustotal, multi)")
	flag.StringVar(&flags.IntelFailPolicy, "intel-fail-policy", "closed", "Behavior on provider failure (open, closed)")
	flag.StringVar(&flags.IntelTimeout, "intel-timeout", "5s", "Per-lookup threat intelligence timeout")
	flag.StringVar(&flags.SafeBrowsingKey, "safebrowsing-api-key", "", "API key for Google Safe Browsing")
	flag.StringVar(&flags.VirusTotalKey, "virustotal-api-key", "", "API key for VirusTotal")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
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
	if err := container.Provide(func(cfg *config.Config) *core.TyposquatDetector {
		return core.NewTyposquatDetector(cfg.GetStringSlice("typosquat.protected_domains"))
	}); err != nil {
		return nil, err
	}

	// Register threat intelligence provider
	if err := container.Provide(func(f *factory.IntelFactory) (core.ThreatIntelProvider, error) {
		return f.CreateProvider()
	}); err != nil {
		return nil, err
	}

	// Register analysis engine
	if err := container.Provide(func(
		classifier core.ContentClassifier,
		typoDetector *core.TyposquatDetector,
		intel core.ThreatIntelProvider,
		logger *zap.Logger,
		f *factory.IntelFactory,
	) (*core.AnalysisEngine, error) {
		timeout, err := f.GetIntelTimeout()
		if err != nil {
			return nil, err
		}
		return core.NewAnalysisEngine(classifier, typoDetector, intel, logger, timeout), nil
	}); err != nil {
		return nil, err
	}

	// Register analysis service with in-memory storage and no alerting
	if err := container.Provide(func(
		engine *core.AnalysisEngine,
		logger *zap.Logger,
	) *core.AnalysisService {
		return core.NewAnalysisService(
			storage.NewMemoryRepository(logger),
			engine,
			nil, // No alerting for CLI
			logger,
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("cli.verbose", flags.Verbose)

	// Set classifier provider
	v.Set("classifier.provider", flags.Classifier)

	// Set provider-specific configuration
	switch flags.Classifier {
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_body_size", flags.MaxBodySize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_body_size", flags.MaxBodySize)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_body_size", flags.MaxBodySize)
	}

	// Set threat intelligence configuration
	v.Set("intel.provider", flags.IntelProvider)
	v.Set("intel.fail_policy", flags.IntelFailPolicy)
	v.Set("intel.timeout", flags.IntelTimeout)
	v.Set("intel.safebrowsing.api_key", flags.SafeBrowsingKey)
	v.Set("intel.virustotal.api_key", flags.VirusTotalKey)

	return config.NewFromViper(v)
}
