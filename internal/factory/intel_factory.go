package factory

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/adapters/intel"
	"github.com/secureguard/phishguard/internal/config"
	"github.com/secureguard/phishguard/internal/core"
)

// IntelFactory creates threat intelligence providers
type IntelFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewIntelFactory creates a new threat intelligence factory
func NewIntelFactory(cfg *config.Config, logger *zap.Logger) *IntelFactory {
	return &IntelFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateProvider creates a threat intelligence provider based on the
// configuration. The fail policy is validated here so a misconfigured
// deployment fails at startup instead of degrading silently.
func (f *IntelFactory) CreateProvider() (core.ThreatIntelProvider, error) {
	intelCfg := f.cfg.GetIntel()

	failPolicy, err := intel.ParseFailPolicy(intelCfg.FailPolicy)
	if err != nil {
		return nil, fmt.Errorf("invalid intel fail policy: %w", err)
	}

	timeout, err := time.ParseDuration(intelCfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid intel timeout: %w", err)
	}

	switch intelCfg.Provider {
	case "safebrowsing":
		return intel.NewSafeBrowsingProvider(intelCfg.SafeBrowsingKey, failPolicy, timeout, f.logger), nil
	case "virustotal":
		return intel.NewVirusTotalProvider(intelCfg.VirusTotalKey, failPolicy, timeout, f.logger), nil
	case "multi":
		return intel.NewMultiProvider(
			intel.NewSafeBrowsingProvider(intelCfg.SafeBrowsingKey, failPolicy, timeout, f.logger),
			intel.NewVirusTotalProvider(intelCfg.VirusTotalKey, failPolicy, timeout, f.logger),
		), nil
	default:
		return nil, fmt.Errorf("unsupported intel provider: %s", intelCfg.Provider)
	}
}

// GetIntelTimeout returns the per-lookup timeout used by the engine
func (f *IntelFactory) GetIntelTimeout() (time.Duration, error) {
	return f.cfg.GetDuration("intel.timeout")
}
