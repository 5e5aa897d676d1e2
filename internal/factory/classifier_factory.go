package factory

import (
	"fmt"

	"github.com/phishguard/phishing-detector/internal/classifier"
	"github.com/phishguard/phishing-detector/internal/config"
	"go.uber.org/zap"
)

// ClassifierFactory creates boosting engines based on configuration
type ClassifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEngine creates a boosting engine based on the configuration
func (f *ClassifierFactory) CreateEngine() (classifier.Engine, error) {
	engine := f.cfg.GetClassifier().Engine
	params := classifier.DefaultParams()

	switch engine {
	case "hist":
		return classifier.NewHistEngine(params, f.logger), nil
	case "exact":
		return classifier.NewExactEngine(params, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported classifier engine: %s", engine)
	}
}
