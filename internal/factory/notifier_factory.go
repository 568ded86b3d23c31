package factory

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/adapters/notify"
	"github.com/secureguard/phishguard/internal/config"
	"github.com/secureguard/phishguard/internal/core"
)

// NotifierFactory creates alert notifiers based on configuration
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNotifier creates a notifier based on the configuration
func (f *NotifierFactory) CreateNotifier() (core.Notifier, error) {
	notifyType := f.cfg.GetString("notify.type")

	switch notifyType {
	case "none":
		return notify.NewNoopNotifier(), nil
	case "log":
		return notify.NewLogNotifier(f.logger), nil
	case "webhook":
		url := f.cfg.GetString("notify.webhook_url")
		if url == "" {
			return nil, fmt.Errorf("notify.webhook_url is required for webhook notifications")
		}
		return notify.NewWebhookNotifier(url, 10*time.Second, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported notifier type: %s", notifyType)
	}
}
