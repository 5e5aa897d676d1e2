package mailparse

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"regexp"
	"sort"
	"strings"

	"github.com/phishguard/phishing-detector/internal/core"
	"go.uber.org/zap"
)

var (
	// The $-_ range covers the URL punctuation between 0x24 and 0x5F,
	// including the path separator.
	urlPattern  = regexp.MustCompile(`https?://(?:[a-zA-Z0-9$-_@.&+!*\(\),]|%[0-9a-fA-F]{2})+`)
	addrPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// Parser turns raw RFC 5322 email text into a ParsedEmail.
//
// Parsing is best-effort: malformed syntax degrades to empty fields rather
// than returning an error, so extraction downstream always has something to
// work with.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new email parser
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse extracts the subject, sender, body, headers and embedded URLs and
// email addresses from raw email content.
func (p *Parser) Parse(raw string) *core.ParsedEmail {
	parsed := &core.ParsedEmail{
		Headers:   make(map[string][]string),
		URLs:      extractURLs(raw),
		Addresses: extractAddresses(raw),
	}

	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		p.logger.Warn("Failed to parse email headers, falling back to raw body",
			zap.Error(err))
		parsed.Body = raw
		return parsed
	}

	body, err := extractTextBody(msg)
	if err != nil {
		p.logger.Warn("Failed to extract email body", zap.Error(err))
		body = ""
	}

	// Bare text with a leading "Word:" token parses as a header section
	// with no body. If nothing that identifies an email came out, the
	// input wasn't one: score the whole text as the body instead.
	if msg.Header.Get("Subject") == "" && msg.Header.Get("From") == "" &&
		strings.TrimSpace(body) == "" {
		parsed.Body = raw
		return parsed
	}

	parsed.Subject = msg.Header.Get("Subject")
	parsed.Sender = msg.Header.Get("From")
	parsed.Recipient = msg.Header.Get("To")
	for key, values := range msg.Header {
		parsed.Headers[key] = values
	}
	parsed.Body = body

	return parsed
}

// extractTextBody returns the message body, selecting the first text/plain
// part of a multipart message and defaulting to empty when none exists.
func extractTextBody(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		return readAll(msg.Body)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return readAll(msg.Body)
	}

	boundary, ok := params["boundary"]
	if !ok {
		return readAll(msg.Body)
	}

	mr := multipart.NewReader(msg.Body, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Damaged multipart structure: give up on the part walk
			// and report an empty body.
			return "", nil
		}

		partType := part.Header.Get("Content-Type")
		if strings.Contains(strings.ToLower(partType), "text/plain") {
			return readAll(part)
		}
	}

	return "", nil
}

func readAll(r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// extractURLs returns the deduplicated URLs found anywhere in the content.
func extractURLs(content string) []string {
	return dedupe(urlPattern.FindAllString(content, -1))
}

// extractAddresses returns the deduplicated email addresses in the content.
func extractAddresses(content string) []string {
	return dedupe(addrPattern.FindAllString(content, -1))
}

// dedupe removes duplicates and sorts so results are deterministic per input.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
