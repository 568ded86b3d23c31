package factory

import (
	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/adapters/gateway"
	"github.com/secureguard/phishguard/internal/config"
	"github.com/secureguard/phishguard/internal/core"
	"github.com/secureguard/phishguard/internal/ports"
	"github.com/secureguard/phishguard/internal/whitelist"
)

// GatewayFactory creates the ingestion gateways
type GatewayFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGatewayFactory creates a new gateway factory
func NewGatewayFactory(cfg *config.Config, logger *zap.Logger) *GatewayFactory {
	return &GatewayFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGateways creates the configured gateways. The HTTP API is always
// served; SMTP ingestion is opt-in.
func (f *GatewayFactory) CreateGateways(service *core.AnalysisService) ([]ports.Gateway, error) {
	gateways := []ports.Gateway{
		gateway.NewHTTPGateway(
			service,
			f.logger,
			f.cfg.GetString("server.listen_address"),
			f.cfg.GetStringSlice("server.allowed_origins"),
		),
	}

	if f.cfg.GetBool("server.smtp.enabled") {
		checker := whitelist.NewChecker(f.cfg.GetStringSlice("whitelist.domains"), f.logger)
		gateways = append(gateways, gateway.NewSMTPGateway(
			service,
			checker,
			f.logger,
			f.cfg.GetString("server.smtp.listen_address"),
		))
	}

	return gateways, nil
}
