package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phishguard/phishing-detector/internal/core"
	"github.com/phishguard/phishing-detector/internal/di"
	"github.com/phishguard/phishing-detector/internal/pipeline"
	"github.com/phishguard/phishing-detector/internal/ports"
	"go.uber.org/zap"
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
	mailFilter ports.MailFilter,
	service *core.DetectorService,
	store *pipeline.Store,
	alertRepo core.AlertRepository,
) error {
	defer logger.Sync()

	// Load the persisted model triple if one exists; until a complete
	// triple is available the service serves neutral verdicts.
	bundle, err := store.Load()
	if err != nil {
		logger.Warn("Failed to load model artifacts", zap.Error(err))
	} else {
		service.SetBundle(bundle)
	}

	// Start the filter
	if err := mailFilter.Start(); err != nil {
		logger.Fatal("Failed to start filter", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the filter
	if err := mailFilter.Stop(); err != nil {
		logger.Error("Failed to stop filter", zap.Error(err))
	}

	// Stop the alert store if needed
	if stopper, ok := alertRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
