package email

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/punchcard-hq/punchcard-backend/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

var (
	ErrNoRecipients    = errors.New("email has no recipients")
	ErrUnknownTemplate = errors.New("unknown email template")
)

// Template names
const (
	TemplateInvitation      = "invitation.html"
	TemplateChangeRequest   = "change_request.html"
	TemplateRequestResolved = "request_resolved.html"
	TemplateVacationRequest = "vacation_request.html"
	TemplatePeriodReport    = "period_report.html"
	TemplateMissingClockOut = "missing_clock_out.html"
)

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is rendered from Template with Data.
type Message struct {
	To          []string
	Subject     string
	Template    string
	Data        any
	Attachments []Attachment
}

// Sender delivers a message and returns its Message-ID.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpSender struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendFunc
	backoff   func(attempt int) time.Duration
}

// NewSender parses the embedded templates. With an empty SMTP host messages are
// rendered and logged but never sent.
func NewSender(cfg config.SMTPConfig) (Sender, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &smtpSender{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
		backoff: func(attempt int) time.Duration {
			// 1s, 2s, 4s
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}, nil
}

func (s *smtpSender) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", ErrNoRecipients
	}
	if s.templates.Lookup(msg.Template) == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, msg.Template)
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, msg.Template, msg.Data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.domain())

	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send",
			"to", strings.Join(msg.To, ","),
			"subject", msg.Subject,
			"message_id", messageID,
		)
		return messageID, nil
	}

	raw, err := buildMIME(s.cfg.FromName, s.cfg.From, msg.To, msg.Subject, messageID, body.String(), msg.Attachments)
	if err != nil {
		return "", err
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, s.cfg.From, msg.To, raw)
		if err == nil {
			slog.Info("Email sent successfully", "to", strings.Join(msg.To, ","), "subject", msg.Subject, "attempt", attempt)
			return messageID, nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", strings.Join(msg.To, ","),
			"subject", msg.Subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.backoff(attempt)):
			}
		}
	}

	return "", fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}

func (s *smtpSender) domain() string {
	if i := strings.LastIndex(s.cfg.From, "@"); i >= 0 && i < len(s.cfg.From)-1 {
		return s.cfg.From[i+1:]
	}
	return "localhost"
}
