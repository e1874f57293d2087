package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/settings"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/email"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/sse"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
)

type dispatcher struct {
	sender       email.Sender
	repo         notification.Repository
	hub          *sse.Hub
	employeeRepo employee.EmployeeRepository
	settingsRepo settings.SettingsRepository
	clock        timecalc.Clock
}

func NewDispatcher(
	sender email.Sender,
	repo notification.Repository,
	hub *sse.Hub,
	employeeRepo employee.EmployeeRepository,
	settingsRepo settings.SettingsRepository,
	clock timecalc.Clock,
) notification.Dispatcher {
	return &dispatcher{
		sender:       sender,
		repo:         repo,
		hub:          hub,
		employeeRepo: employeeRepo,
		settingsRepo: settingsRepo,
		clock:        clock,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, events []notification.Event) []string {
	var warnings []string
	seen := make(map[string]bool)
	for _, event := range events {
		if _, err := d.Deliver(ctx, event); err != nil {
			slog.Error("Notification delivery failed",
				"type", event.Type(),
				"company_id", event.CompanyID,
				"error", err,
			)
			w := notification.WarningFor(event.Type())
			if !seen[w] {
				seen[w] = true
				warnings = append(warnings, w)
			}
		}
	}
	return warnings
}

// Deliver emails every recipient with an address, then records an inbox row and
// pushes it over SSE for every recipient that is an employee. Only the email
// decides success; inbox problems are logged.
func (d *dispatcher) Deliver(ctx context.Context, event notification.Event) (string, error) {
	if event.Payload == nil {
		return "", fmt.Errorf("%w: event has no payload", notification.ErrDeliveryFailed)
	}

	emails, inbox, err := d.resolveRecipients(ctx, event)
	if err != nil {
		return "", err
	}
	if len(emails) == 0 && len(inbox) == 0 {
		return "", notification.ErrNoRecipients
	}

	c := compose(event.Payload)

	var messageID string
	if len(emails) > 0 {
		msg := email.Message{
			To:       emails,
			Subject:  c.subject,
			Template: c.template,
			Data:     event.Payload,
		}
		if c.attachment != nil {
			msg.Attachments = []email.Attachment{{
				Filename:    c.attachment.Filename,
				ContentType: c.attachment.ContentType,
				Data:        c.attachment.Data,
			}}
		}
		messageID, err = d.sender.Send(ctx, msg)
		if err != nil {
			return "", fmt.Errorf("%w: %w", notification.ErrDeliveryFailed, err)
		}
	}

	if c.inApp && len(inbox) > 0 {
		d.recordInbox(ctx, event, c, inbox)
	}

	return messageID, nil
}

// resolveRecipients returns the email addresses to send to and the employee ids
// that get an inbox row.
func (d *dispatcher) resolveRecipients(ctx context.Context, event notification.Event) ([]string, []string, error) {
	var emails, inbox []string
	seenEmail := make(map[string]bool)
	seenInbox := make(map[string]bool)

	addEmail := func(addr string) {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr != "" && !seenEmail[addr] {
			seenEmail[addr] = true
			emails = append(emails, addr)
		}
	}
	addInbox := func(id string) {
		if id != "" && !seenInbox[id] {
			seenInbox[id] = true
			inbox = append(inbox, id)
		}
	}

	for _, r := range event.To {
		addEmail(r.Email)
		addInbox(r.EmployeeID)
	}

	if event.ToAdmins {
		admins, err := d.employeeRepo.ListAdmins(ctx, event.CompanyID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list admins: %w", err)
		}
		for _, a := range admins {
			addInbox(a.ID)
		}

		ownerEmail := ""
		s, err := d.settingsRepo.Get(ctx, event.CompanyID)
		if err != nil && !errors.Is(err, settings.ErrSettingsNotFound) {
			return nil, nil, fmt.Errorf("failed to load settings: %w", err)
		}
		if err == nil && s.OwnerEmail != nil {
			ownerEmail = *s.OwnerEmail
		}

		if ownerEmail != "" {
			addEmail(ownerEmail)
		} else {
			for _, a := range admins {
				if a.Email != nil {
					addEmail(*a.Email)
				}
			}
		}
	}

	return emails, inbox, nil
}

func (d *dispatcher) recordInbox(ctx context.Context, event notification.Event, c composed, recipients []string) {
	now := d.clock.Now()
	rows := make([]*notification.Notification, 0, len(recipients))
	for _, id := range recipients {
		rows = append(rows, &notification.Notification{
			ID:          uuid.NewString(),
			CompanyID:   event.CompanyID,
			RecipientID: id,
			Type:        event.Type(),
			Title:       c.title,
			Message:     c.message,
			Data:        c.data,
			CreatedAt:   now,
		})
	}

	if err := d.repo.CreateBatch(ctx, rows); err != nil {
		slog.Error("Failed to store in-app notifications", "type", event.Type(), "count", len(rows), "error", err)
		return
	}

	for _, n := range rows {
		d.hub.Publish(n.RecipientID, sse.Event{
			Event: sse.EventNotification,
			Data:  notification.NewNotificationResponse(n),
		})
	}
}

type composed struct {
	subject    string
	template   string
	title      string
	message    string
	data       map[string]interface{}
	inApp      bool
	attachment *notification.Attachment
}

func compose(p notification.Payload) composed {
	switch p := p.(type) {
	case notification.ChangeRequestSubmitted:
		return composed{
			subject:  fmt.Sprintf("Change request from %s for %s", p.EmployeeName, p.Date),
			template: email.TemplateChangeRequest,
			title:    "New change request",
			message:  fmt.Sprintf("%s requested a change for %s: %s", p.EmployeeName, p.Date, p.Summary),
			data:     map[string]interface{}{"entry_id": p.EntryID, "date": p.Date},
			inApp:    true,
		}
	case notification.RequestResolved:
		what := "change request"
		if p.Kind == notification.RequestKindVacation {
			what = "vacation request"
		}
		return composed{
			subject:  fmt.Sprintf("Your %s for %s was %s", what, p.Date, p.Status()),
			template: email.TemplateRequestResolved,
			title:    fmt.Sprintf("%s %s", capitalize(what), p.Status()),
			message:  fmt.Sprintf("Your %s for %s was %s", what, p.Date, p.Status()),
			data:     map[string]interface{}{"entry_id": p.EntryID, "date": p.Date, "status": p.Status(), "note": p.Note},
			inApp:    true,
		}
	case notification.VacationRequested:
		return composed{
			subject:  fmt.Sprintf("Vacation request from %s for %s", p.EmployeeName, p.Date),
			template: email.TemplateVacationRequest,
			title:    "New vacation request",
			message:  fmt.Sprintf("%s requested vacation on %s", p.EmployeeName, p.Date),
			data:     map[string]interface{}{"entry_id": p.EntryID, "date": p.Date},
			inApp:    true,
		}
	case notification.Invitation:
		return composed{
			subject:  fmt.Sprintf("You're invited to join %s", p.CompanyName),
			template: email.TemplateInvitation,
		}
	case notification.PeriodReport:
		return composed{
			subject:    fmt.Sprintf("%s payroll summary: %s", p.CompanyName, p.PeriodLabel),
			template:   email.TemplatePeriodReport,
			attachment: p.Attachment,
		}
	case notification.MissingClockOut:
		return composed{
			subject:  fmt.Sprintf("Missing clock-out: %s on %s", p.EmployeeName, p.Date),
			template: email.TemplateMissingClockOut,
			title:    "Missing clock-out",
			message:  fmt.Sprintf("You clocked in at %s on %s and never clocked out. Submit a change request to fix it", p.ClockIn, p.Date),
			data:     map[string]interface{}{"entry_id": p.EntryID, "date": p.Date},
			inApp:    true,
		}
	}
	return composed{subject: "Notification", title: "Notification", inApp: true}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// expiresLabel renders an invitation expiry for humans.
func expiresLabel(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006")
}
