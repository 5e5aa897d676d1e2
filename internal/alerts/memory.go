package alerts

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/phishguard/phishing-detector/internal/core"
	"go.uber.org/zap"
)

// ErrNotFound is returned when an alert does not exist in the store.
var ErrNotFound = errors.New("alert not found")

// MemoryStore is an in-memory implementation of the AlertRepository
// interface. Alerts survive only for the process lifetime.
type MemoryStore struct {
	alerts    map[string]*core.Alert
	mu        sync.RWMutex
	logger    *zap.Logger
	retention time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewMemoryStore creates a new in-memory alert store
func NewMemoryStore(logger *zap.Logger, retention, cleanupFreq time.Duration) *MemoryStore {
	store := &MemoryStore{
		alerts:    make(map[string]*core.Alert),
		logger:    logger,
		retention: retention,
		stopCh:    make(chan struct{}),
	}

	go store.startCleanupTask(cleanupFreq)

	return store
}

// Save stores a new alert
func (s *MemoryStore) Save(_ context.Context, alert *core.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *alert
	s.alerts[alert.ID] = &stored
	return nil
}

// Get retrieves an alert by ID
func (s *MemoryStore) Get(_ context.Context, id string) (*core.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alert, ok := s.alerts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *alert
	return &copied, nil
}

// List returns alerts newest first, optionally unread only
func (s *MemoryStore) List(_ context.Context, unreadOnly bool) ([]*core.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Alert, 0, len(s.alerts))
	for _, alert := range s.alerts {
		if unreadOnly && alert.Read {
			continue
		}
		copied := *alert
		out = append(out, &copied)
	}

	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}

// MarkRead marks an alert as read
func (s *MemoryStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[id]
	if !ok {
		return ErrNotFound
	}
	alert.Read = true
	return nil
}

// Acknowledge marks an alert as acknowledged
func (s *MemoryStore) Acknowledge(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[id]
	if !ok {
		return ErrNotFound
	}
	alert.Acknowledged = true
	return nil
}

// Stats returns summary counts for the store
func (s *MemoryStore) Stats(_ context.Context) (*core.AlertStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &core.AlertStats{
		BySeverity: make(map[core.RiskLevel]int),
	}
	for _, alert := range s.alerts {
		stats.Total++
		if !alert.Read {
			stats.Unread++
		}
		stats.BySeverity[alert.Severity]++
	}
	return stats, nil
}

// Cleanup removes alerts older than the retention window
func (s *MemoryStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.retention)
	removed := 0
	for id, alert := range s.alerts {
		if alert.CreatedAt.Before(cutoff) {
			delete(s.alerts, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("Cleaned up expired alerts", zap.Int("removed", removed))
	}
	return nil
}

// Stop terminates the background cleanup task
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *MemoryStore) startCleanupTask(freq time.Duration) {
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
