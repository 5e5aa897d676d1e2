package ports

import (
	"context"

	"github.com/phishguard/phishing-detector/internal/core"
)

// MailFilter defines the interface for the mail-scanning front end
type MailFilter interface {
	// ProcessEmail scores raw email content and returns the verdict
	ProcessEmail(ctx context.Context, raw string) (*core.EmailScanResult, error)

	// Start starts the mail filter service
	Start() error

	// Stop stops the mail filter service
	Stop() error
}
