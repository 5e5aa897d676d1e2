package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/phishguard/phishing-detector/internal/alerts"
	"github.com/phishguard/phishing-detector/internal/config"
	"github.com/phishguard/phishing-detector/internal/core"
	"go.uber.org/zap"
)

// AlertFactory creates alert repositories based on configuration
type AlertFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAlertFactory creates a new alert factory
func NewAlertFactory(cfg *config.Config, logger *zap.Logger) *AlertFactory {
	return &AlertFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateAlertRepository creates an alert repository based on the configuration
func (f *AlertFactory) CreateAlertRepository() (core.AlertRepository, error) {
	storeType := f.cfg.GetString("alerts.store")
	retention, err := f.cfg.GetDuration("alerts.retention")
	if err != nil {
		return nil, fmt.Errorf("invalid alert retention: %w", err)
	}
	cleanupFreq, err := f.cfg.GetDuration("alerts.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid alert cleanup frequency: %w", err)
	}

	switch storeType {
	case "memory":
		return alerts.NewMemoryStore(f.logger, retention, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("alerts.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return alerts.NewSQLiteStore(sqlitePath, f.logger, retention, cleanupFreq)
	case "mysql":
		mysqlDSN := f.cfg.GetString("alerts.mysql_dsn")
		return alerts.NewMySQLStore(mysqlDSN, f.logger, retention, cleanupFreq)
	default:
		return nil, fmt.Errorf("unsupported alert store: %s", storeType)
	}
}
