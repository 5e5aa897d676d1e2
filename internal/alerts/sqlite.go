package alerts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/phishguard/phishing-detector/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the AlertRepository interface.
type SQLiteStore struct {
	db        *sql.DB
	logger    *zap.Logger
	retention time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewSQLiteStore creates a new SQLite alert store
func NewSQLiteStore(dbPath string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			severity TEXT,
			message TEXT,
			details TEXT,
			created_at TIMESTAMP,
			read BOOLEAN DEFAULT 0,
			acknowledged BOOLEAN DEFAULT 0
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create alerts table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts(created_at)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	store := &SQLiteStore{
		db:        db,
		logger:    logger,
		retention: retention,
		stopCh:    make(chan struct{}),
	}

	go store.startCleanupTask(cleanupFreq)

	return store, nil
}

// Save stores a new alert
func (s *SQLiteStore) Save(ctx context.Context, alert *core.Alert) error {
	details, err := json.Marshal(alert.Details)
	if err != nil {
		return fmt.Errorf("failed to encode alert details: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO alerts (id, severity, message, details, created_at, read, acknowledged)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, alert.ID, string(alert.Severity), alert.Message, string(details),
		alert.CreatedAt.UTC().Format(time.RFC3339), alert.Read, alert.Acknowledged)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// Get retrieves an alert by ID
func (s *SQLiteStore) Get(ctx context.Context, id string) (*core.Alert, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, severity, message, details, created_at, read, acknowledged
		FROM alerts WHERE id = ?
	`, id)

	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return alert, err
}

// List returns alerts newest first, optionally unread only
func (s *SQLiteStore) List(ctx context.Context, unreadOnly bool) ([]*core.Alert, error) {
	query := `
		SELECT id, severity, message, details, created_at, read, acknowledged
		FROM alerts
	`
	if unreadOnly {
		query += ` WHERE read = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var out []*core.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, alert)
	}
	return out, rows.Err()
}

// MarkRead marks an alert as read
func (s *SQLiteStore) MarkRead(ctx context.Context, id string) error {
	return s.setFlag(ctx, id, "read")
}

// Acknowledge marks an alert as acknowledged
func (s *SQLiteStore) Acknowledge(ctx context.Context, id string) error {
	return s.setFlag(ctx, id, "acknowledged")
}

func (s *SQLiteStore) setFlag(ctx context.Context, id, column string) error {
	// column is one of two fixed names, never caller input.
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE alerts SET %s = 1 WHERE id = ?`, column), id)
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
func (s *SQLiteStore) Stats(ctx context.Context) (*core.AlertStats, error) {
	stats := &core.AlertStats{
		BySeverity: make(map[core.RiskLevel]int),
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT severity, read, COUNT(*) FROM alerts GROUP BY severity, read
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
func (s *SQLiteStore) Cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-s.retention).UTC().Format(time.RFC3339)
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
func (s *SQLiteStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close SQLite database", zap.Error(err))
		}
	})
}

func (s *SQLiteStore) startCleanupTask(freq time.Duration) {
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

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*core.Alert, error) {
	var alert core.Alert
	var severity, details, createdAt string

	if err := row.Scan(&alert.ID, &severity, &alert.Message, &details,
		&createdAt, &alert.Read, &alert.Acknowledged); err != nil {
		return nil, err
	}

	alert.Severity = core.RiskLevel(severity)
	if err := json.Unmarshal([]byte(details), &alert.Details); err != nil {
		return nil, fmt.Errorf("failed to decode alert details: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse alert timestamp: %w", err)
	}
	alert.CreatedAt = ts

	return &alert, nil
}
