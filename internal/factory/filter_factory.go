package factory

import (
	"github.com/phishguard/phishing-detector/internal/adapters/filter"
	"github.com/phishguard/phishing-detector/internal/config"
	"github.com/phishguard/phishing-detector/internal/core"
	"github.com/phishguard/phishing-detector/internal/ports"
	"go.uber.org/zap"
)

// FilterFactory creates mail filters based on configuration
type FilterFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.DetectorService
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.DetectorService) *FilterFactory {
	return &FilterFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateMailFilter creates the SMTP content filter front end
func (f *FilterFactory) CreateMailFilter() (ports.MailFilter, error) {
	return filter.NewSMTPFilter(f.service, f.logger, f.cfg.GetServer()), nil
}
