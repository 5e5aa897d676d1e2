package alerts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/phishguard/phishing-detector/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the AlertRepository interface,
// for deployments where several scanning nodes share one alert inbox.
type MySQLStore struct {
	db        *sql.DB
	logger    *zap.Logger
	retention time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewMySQLStore creates a new MySQL alert store
func NewMySQLStore(dsn string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	// `read` is a reserved word in MySQL, hence is_read.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id VARCHAR(36) PRIMARY KEY,
			severity VARCHAR(16),
			message TEXT,
			details TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN DEFAULT FALSE,
			acknowledged BOOLEAN DEFAULT FALSE,
			INDEX idx_alerts_created_at (created_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create alerts table: %w", err)
	}

	store := &MySQLStore{
		db:        db,
		logger:    logger,
		retention: retention,
		stopCh:    make(chan struct{}),
	}

	go store.startCleanupTask(cleanupFreq)

	return store, nil
}

// Save stores a new alert
func (s *MySQLStore) Save(ctx context.Context, alert *core.Alert) error {
	details, err := json.Marshal(alert.Details)
	if err != nil {
		return fmt.Errorf("failed to encode alert details: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		REPLACE INTO alerts (id, severity, message, details, created_at, is_read, acknowledged)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, alert.ID, string(alert.Severity), alert.Message, string(details),
		alert.CreatedAt.UTC(), alert.Read, alert.Acknowledged)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// Get retrieves an alert by ID
func (s *MySQLStore) Get(ctx context.Context, id string) (*core.Alert, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, severity, message, details, created_at, is_read, acknowledged
		FROM alerts WHERE id = ?
	`, id)

	alert, err := scanMySQLAlert(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return alert, err
}

// List returns alerts newest first, optionally unread only
func (s *MySQLStore) List(ctx context.Context, unreadOnly bool) ([]*core.Alert, error) {
	query := `
		SELECT id, severity, message, details, created_at, is_read, acknowledged
		FROM alerts
	`
	if unreadOnly {
		query += ` WHERE is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var out []*core.Alert
	for rows.Next() {
		alert, err := scanMySQLAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, alert)
	}
	return out, rows.Err()
}

// MarkRead marks an alert as read
func (s *MySQLStore) MarkRead(ctx context.Context, id string) error {
	return s.setFlag(ctx, id, "is_read")
}

// Acknowledge marks an alert as acknowledged
func (s *MySQLStore) Acknowledge(ctx context.Context, id string) error {
	return s.setFlag(ctx, id, "acknowledged")
}

func (s *MySQLStore) setFlag(ctx context.Context, id, column string) error {
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE alerts SET %s = TRUE WHERE id = ?`, column), id)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns summary counts for the store
func (s *MySQLStore) Stats(ctx context.Context) (*core.AlertStats, error) {
	stats := &core.AlertStats{
		BySeverity: make(map[core.RiskLevel]int),
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT severity, is_read, COUNT(*) FROM alerts GROUP BY severity, is_read
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var severity string
		var read bool
		var count int
		if err := rows.Scan(&severity, &read, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		if !read {
			stats.Unread += count
		}
		stats.BySeverity[core.RiskLevel(severity)] += count
	}
	return stats, rows.Err()
}

// Cleanup removes alerts older than the retention window
func (s *MySQLStore) Cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-s.retention).UTC()
	result, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE created_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean up alerts: %w", err)
	}

	if removed, err := result.RowsAffected(); err == nil && removed > 0 {
		s.logger.Debug("Cleaned up expired alerts", zap.Int64("removed", removed))
	}
	return nil
}

// Stop terminates the background cleanup task and closes the database
func (s *MySQLStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close MySQL connection", zap.Error(err))
		}
	})
}

func (s *MySQLStore) startCleanupTask(freq time.Duration) {
	if freq <= 0 {
		return
	}
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Cleanup(context.Background()); err != nil {
				s.logger.Error("Alert cleanup failed", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

func scanMySQLAlert(row rowScanner) (*core.Alert, error) {
	var alert core.Alert
	var severity, details string
	var createdAt time.Time

	if err := row.Scan(&alert.ID, &severity, &alert.Message, &details,
		&createdAt, &alert.Read, &alert.Acknowledged); err != nil {
		return nil, err
	}

	alert.Severity = core.RiskLevel(severity)
	if err := json.Unmarshal([]byte(details), &alert.Details); err != nil {
		return nil, fmt.Errorf("failed to decode alert details: %w", err)
	}
	alert.CreatedAt = createdAt

	return &alert, nil
}
