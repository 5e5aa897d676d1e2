package core

import (
	"context"
)

// FeatureExtractor defines the interface for turning raw input into the
// model's feature vector. Implementations never fail; malformed input
// degrades to neutral features.
type FeatureExtractor interface {
	// ExtractEmail parses raw email content and computes its features
	ExtractEmail(raw string) (*ParsedEmail, *FeatureVector)

	// ExtractURL analyzes a bare URL and computes its features
	ExtractURL(rawURL string) (URLAnalysis, *FeatureVector)
}

// AlertRepository defines the interface for persisting scan alerts
type AlertRepository interface {
	// Save stores a new alert
	Save(ctx context.Context, alert *Alert) error

	// Get retrieves an alert by ID
	Get(ctx context.Context, id string) (*Alert, error)

	// List returns alerts newest first, optionally unread only
	List(ctx context.Context, unreadOnly bool) ([]*Alert, error)

	// MarkRead marks an alert as read
	MarkRead(ctx context.Context, id string) error

	// Acknowledge marks an alert as acknowledged
	Acknowledge(ctx context.Context, id string) error

	// Stats returns summary counts for the store
	Stats(ctx context.Context) (*AlertStats, error)

	// Cleanup removes alerts older than the retention window
	Cleanup(ctx context.Context) error
}
