package mailparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestParser_Parse(t *testing.T) {
	parser := NewParser(zap.NewNop())

	raw := "From: Alice <alice@example.com>\r\n" +
		"To: bob@example.com\r\n" +
		"Subject: Quarterly report\r\n" +
		"\r\n" +
		"The report is at https://reports.example.com/q3 - thanks!\r\n"

	parsed := parser.Parse(raw)

	assert.Equal(t, "Quarterly report", parsed.Subject)
	assert.Equal(t, "Alice <alice@example.com>", parsed.Sender)
	assert.Equal(t, "bob@example.com", parsed.Recipient)
	assert.Contains(t, parsed.Body, "The report is at")
	assert.Equal(t, []string{"https://reports.example.com/q3"}, parsed.URLs)
	assert.Contains(t, parsed.Addresses, "alice@example.com")
	assert.Contains(t, parsed.Addresses, "bob@example.com")
}

func TestParser_ParseMalformedFallsBackToRaw(t *testing.T) {
	parser := NewParser(zap.NewNop())

	raw := "this is not an email at all, but it mentions http://example.com"
	parsed := parser.Parse(raw)

	assert.Empty(t, parsed.Subject)
	assert.Empty(t, parsed.Sender)
	assert.Equal(t, raw, parsed.Body)
	assert.Equal(t, []string{"http://example.com"}, parsed.URLs)
}

func TestParser_ParseMultipartPicksTextPlain(t *testing.T) {
	parser := NewParser(zap.NewNop())

	raw := "From: sender@example.com\r\n" +
		"Subject: Mixed content\r\n" +
		"Content-Type: multipart/alternative; boundary=\"sep\"\r\n" +
		"\r\n" +
		"--sep\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>HTML body</p>\r\n" +
		"--sep\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"Plain body\r\n" +
		"--sep--\r\n"

	parsed := parser.Parse(raw)

	assert.Contains(t, parsed.Body, "Plain body")
	assert.NotContains(t, parsed.Body, "HTML body")
}

func TestParser_ParseBareTextBecomesBody(t *testing.T) {
	parser := NewParser(zap.NewNop())

	// A leading "Word:" token makes bare text header-parseable, but nothing
	// identifying an email comes out of it; the whole text is the body.
	raw := "URGENT: verify your account immediately or it will be suspended. Click here now!"
	parsed := parser.Parse(raw)

	assert.Empty(t, parsed.Subject)
	assert.Empty(t, parsed.Sender)
	assert.Equal(t, raw, parsed.Body)
}

func TestExtractURLs_Dedupe(t *testing.T) {
	content := "see http://a.example.com and http://a.example.com plus https://b.example.com"
	urls := extractURLs(content)

	assert.Equal(t, []string{"http://a.example.com", "https://b.example.com"}, urls)
}
