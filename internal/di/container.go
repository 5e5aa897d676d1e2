package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/phishguard/phishing-detector/internal/config"
	"github.com/phishguard/phishing-detector/internal/core"
	"github.com/phishguard/phishing-detector/internal/factory"
	"github.com/phishguard/phishing-detector/internal/features"
	"github.com/phishguard/phishing-detector/internal/logging"
	"github.com/phishguard/phishing-detector/internal/mailparse"
	"github.com/phishguard/phishing-detector/internal/pipeline"
	"github.com/phishguard/phishing-detector/internal/ports"
	"github.com/phishguard/phishing-detector/internal/utils"
	"github.com/phishguard/phishing-detector/internal/whitelist"
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

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register mail parser
	if err := container.Provide(mailparse.NewParser); err != nil {
		return nil, err
	}

	// Register feature extractor
	if err := container.Provide(func(parser *mailparse.Parser, text *utils.TextProcessor, logger *zap.Logger) core.FeatureExtractor {
		return features.NewExtractor(parser, text, logger)
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewAlertFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}

	// Register alert repository
	if err := container.Provide(func(f *factory.AlertFactory) (core.AlertRepository, error) {
		return f.CreateAlertRepository()
	}); err != nil {
		return nil, err
	}

	// Register whitelist checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		domains := cfg.GetDetector().WhitelistedDomains
		if len(domains) > 0 {
			logger.Info("Loaded whitelisted domains", zap.Strings("domains", domains))
		}
		return whitelist.NewChecker(domains, logger)
	}); err != nil {
		return nil, err
	}

	// Register alert threshold
	if err := container.Provide(func(cfg *config.Config) float64 {
		return cfg.GetDetector().AlertThreshold
	}); err != nil {
		return nil, err
	}

	// Register detector service
	if err := container.Provide(core.NewDetectorService); err != nil {
		return nil, err
	}

	// Register model artifact store
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *pipeline.Store {
		return pipeline.NewStore(cfg.GetModel().Dir, logger)
	}); err != nil {
		return nil, err
	}

	// Register mail filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.MailFilter, error) {
		return f.CreateMailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
