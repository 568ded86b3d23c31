package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/core"
	"github.com/secureguard/phishguard/internal/di"
	"github.com/secureguard/phishguard/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	gateways []ports.Gateway,
	classifier core.ContentClassifier,
	repository core.IncidentRepository,
) error {
	defer logger.Sync()

	// Start the gateways
	started := make([]ports.Gateway, 0, len(gateways))
	for _, gw := range gateways {
		if err := gw.Start(); err != nil {
			logger.Fatal("Failed to start gateway", zap.Error(err))
			return err
		}
		started = append(started, gw)
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the gateways
	for _, gw := range started {
		if err := gw.Stop(); err != nil {
			logger.Error("Failed to stop gateway", zap.Error(err))
		}
	}

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}
	if closer, ok := repository.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close incident store", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
