package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/phishguard/phishing-detector/internal/config"
	"github.com/phishguard/phishing-detector/internal/core"
	"go.uber.org/zap"
)

// SMTPFilter is an SMTP content filter: it accepts mail from the MTA,
// scores each message through the detection service, stamps the verdict
// headers, and either rejects phishing at the block threshold or relays the
// message to the upstream hop.
type SMTPFilter struct {
	service *core.DetectorService
	logger  *zap.Logger
	cfg     config.ServerConfig
	server  *smtp.Server
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(service *core.DetectorService, logger *zap.Logger, cfg config.ServerConfig) *SMTPFilter {
	return &SMTPFilter{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
}

// Start starts the SMTP filter service
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP filter starting", zap.String("address", f.cfg.ListenAddress))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP filter service
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail scores raw email content and returns the verdict
func (f *SMTPFilter) ProcessEmail(ctx context.Context, raw string) (*core.EmailScanResult, error) {
	return f.service.ScoreEmail(ctx, raw)
}

// relay forwards the stamped message to the upstream MTA.
func (f *SMTPFilter) relay(sender string, recipients []string, data []byte) error {
	addr := fmt.Sprintf("%s:%d", f.cfg.RelayAddress, f.cfg.RelayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to upstream MTA: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for a content filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data scores the message and relays or rejects it.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.filter.service.ScoreEmail(ctx, string(rawData))
	if err != nil {
		// Scoring never fails by design; treat a fault as neutral so
		// mail flow is not disrupted.
		s.filter.logger.Error("Failed to score email",
			zap.Error(err),
			zap.String("sender", s.sender))
		result = &core.EmailScanResult{
			PredictionResult: core.PredictionResult{
				IsPhishing: false,
				Confidence: 0.5,
				RiskLevel:  core.RiskLevelFor(0.5),
				ModelUsed:  "error",
				AnalyzedAt: time.Now(),
			},
		}
	}

	s.filter.logger.Info("Scored inbound message",
		zap.String("sender", s.sender),
		zap.Bool("is_phishing", result.IsPhishing),
		zap.Float64("confidence", result.Confidence),
		zap.String("risk_level", string(result.RiskLevel)))

	cfg := s.filter.cfg
	if result.IsPhishing && cfg.BlockPhishing && result.Confidence >= cfg.BlockThreshold {
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      "Message rejected as phishing",
		}
	}

	stamped := stampHeaders(rawData, [][2]string{
		{cfg.StatusHeader, statusValue(result.IsPhishing)},
		{cfg.ScoreHeader, fmt.Sprintf("%.4f", result.Confidence)},
		{cfg.RiskHeader, string(result.RiskLevel)},
	})

	if cfg.RelayEnabled {
		if err := s.filter.relay(s.sender, s.recipients, stamped); err != nil {
			s.filter.logger.Error("Failed to relay message", zap.Error(err))
			return err
		}
	}

	return nil
}

// Logout handles session termination
func (s *smtpSession) Logout() error {
	return nil
}

func statusValue(isPhishing bool) string {
	if isPhishing {
		return "Yes"
	}
	return "No"
}

// stampHeaders prepends verdict headers to the raw message in the order
// given.
func stampHeaders(raw []byte, headers [][2]string) []byte {
	var buf bytes.Buffer
	for _, kv := range headers {
		buf.WriteString(kv[0])
		buf.WriteString(": ")
		buf.WriteString(kv[1])
		buf.WriteString("\r\n")
	}
	buf.Write(raw)
	return buf.Bytes()
}
