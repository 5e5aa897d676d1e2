package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIsWhitelisted(t *testing.T) {
	checker := NewChecker([]string{"Example.com", " trusted.org "}, zap.NewNop())

	tests := []struct {
		name   string
		sender string
		want   bool
	}{
		{"Exact domain match", "alice@example.com", true},
		{"Case folded", "bob@EXAMPLE.COM", true},
		{"Trimmed configured domain", "carol@trusted.org", true},
		{"Angle bracketed address", "Dave <dave@example.com>", true},
		{"Unlisted domain", "mallory@phish.tk", false},
		{"Subdomain is not the listed domain", "eve@mail.example.com", false},
		{"No at sign", "not-an-address", false},
		{"Empty sender", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checker.IsWhitelisted(tt.sender))
		})
	}
}

func TestIsWhitelisted_EmptyList(t *testing.T) {
	checker := NewChecker(nil, zap.NewNop())
	assert.False(t, checker.IsWhitelisted("alice@example.com"))
}
