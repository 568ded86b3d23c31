package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes alert payloads to the structured log. Useful as the
// default sink when no external alerting is wired.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Broadcast logs the alert payload
func (n *LogNotifier) Broadcast(_ context.Context, payload string) error {
	n.logger.Info("Phishing alert", zap.String("payload", payload))
	return nil
}

// NoopNotifier discards all alerts
type NoopNotifier struct{}

// NewNoopNotifier creates a notifier that drops everything
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// Broadcast discards the payload
func (n *NoopNotifier) Broadcast(_ context.Context, _ string) error {
	return nil
}
