package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invitationData struct {
	EmployeeName string
	CompanyName  string
	AcceptURL    string
	ExpiresAt    string
}

func newTestSender(t *testing.T, cfg config.SMTPConfig) *smtpSender {
	t.Helper()
	s, err := NewSender(cfg)
	require.NoError(t, err)
	sender := s.(*smtpSender)
	sender.backoff = func(int) time.Duration { return 0 }
	return sender
}

func invitationMessage() Message {
	return Message{
		To:       []string{"ann@example.com"},
		Subject:  "You're invited",
		Template: TemplateInvitation,
		Data: invitationData{
			EmployeeName: "Ann",
			CompanyName:  "Acme",
			AcceptURL:    "https://app.example.com/accept-invite?token=abc",
			ExpiresAt:    "2024-01-22",
		},
	}
}

func TestSend_SkipsWithoutHost(t *testing.T) {
	s := newTestSender(t, config.SMTPConfig{From: "no-reply@acme.test"})
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called without a host")
		return nil
	}

	id, err := s.Send(context.Background(), invitationMessage())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id, "@acme.test>"))
}

func TestSend_Validation(t *testing.T) {
	s := newTestSender(t, config.SMTPConfig{})

	msg := invitationMessage()
	msg.To = nil
	_, err := s.Send(context.Background(), msg)
	assert.ErrorIs(t, err, ErrNoRecipients)

	msg = invitationMessage()
	msg.Template = "nope.html"
	_, err = s.Send(context.Background(), msg)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestSend_RetriesThenSucceeds(t *testing.T) {
	s := newTestSender(t, config.SMTPConfig{Host: "smtp.test", Port: 25, From: "no-reply@acme.test", FromName: "Acme"})

	calls := 0
	var body string
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		calls++
		assert.Equal(t, "smtp.test:25", addr)
		assert.Equal(t, "no-reply@acme.test", from)
		if calls < 3 {
			return errors.New("connection refused")
		}
		body = string(msg)
		return nil
	}

	id, err := s.Send(context.Background(), invitationMessage())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, body, "Message-ID: "+id)
	assert.Contains(t, body, "https://app.example.com/accept-invite?token=abc")
	assert.Contains(t, body, "text/html")
}

func TestSend_GivesUpAfterMaxRetries(t *testing.T) {
	s := newTestSender(t, config.SMTPConfig{Host: "smtp.test", Port: 25, From: "no-reply@acme.test"})

	calls := 0
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("boom")
	}

	_, err := s.Send(context.Background(), invitationMessage())
	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Equal(t, maxRetries, calls)
}

func TestBuildMIME_WithAttachment(t *testing.T) {
	raw, err := buildMIME("Acme", "no-reply@acme.test", []string{"books@acme.test"}, "Report", "<id@acme.test>",
		"<p>hi</p>", []Attachment{{Filename: "report.xlsx", Data: []byte("spreadsheet")}})
	require.NoError(t, err)

	msg := string(raw)
	assert.Contains(t, msg, "multipart/mixed")
	assert.Contains(t, msg, `filename=report.xlsx`)
	assert.Contains(t, msg, "application/octet-stream")
	assert.Contains(t, msg, "c3ByZWFkc2hlZXQ=")
}

func TestWrapBase64(t *testing.T) {
	out := string(wrapBase64(make([]byte, 120)))
	lines := strings.Split(out, "\r\n")
	require.Len(t, lines, 3)
	assert.Len(t, lines[0], 76)
}
