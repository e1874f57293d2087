package notification

import (
	"context"

	"github.com/punchcard-hq/punchcard-backend/internal/config"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/invitation"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
)

type notifyService struct {
	dispatcher  notification.Dispatcher
	frontendURL string
	invitations config.InvitationConfig
	clock       timecalc.Clock
}

// NewNotifyService backs the direct notification endpoints. Each call sends exactly one email.
func NewNotifyService(dispatcher notification.Dispatcher, frontendURL string, invitations config.InvitationConfig, clock timecalc.Clock) notification.NotifyService {
	return &notifyService{
		dispatcher:  dispatcher,
		frontendURL: frontendURL,
		invitations: invitations,
		clock:       clock,
	}
}

func (s *notifyService) ChangeRequest(ctx context.Context, req notification.NotifyChangeRequestRequest) (notification.NotifyResponse, error) {
	if err := req.Validate(); err != nil {
		return notification.NotifyResponse{}, err
	}
	return s.deliver(ctx, req.To, notification.ChangeRequestSubmitted{
		EmployeeName: req.EmployeeName,
		Date:         req.Date,
		Summary:      req.Summary,
		Reason:       req.Reason,
	})
}

func (s *notifyService) ChangeRequestResolved(ctx context.Context, req notification.NotifyResolvedRequest) (notification.NotifyResponse, error) {
	if err := req.Validate(); err != nil {
		return notification.NotifyResponse{}, err
	}
	return s.deliver(ctx, req.To, notification.RequestResolved{
		EmployeeName: req.EmployeeName,
		Date:         req.Date,
		Kind:         req.Kind,
		Approved:     req.Status == "approved",
		Note:         req.Note,
	})
}

func (s *notifyService) Invitation(ctx context.Context, req notification.NotifyInvitationRequest) (notification.NotifyResponse, error) {
	if err := req.Validate(); err != nil {
		return notification.NotifyResponse{}, err
	}
	expires := invitation.ExpiresAt(s.clock.Now(), s.invitations.Expiry)
	return s.deliver(ctx, req.To, notification.Invitation{
		EmployeeName: req.EmployeeName,
		CompanyName:  req.CompanyName,
		Token:        req.Token,
		AcceptURL:    invitation.AcceptURL(s.frontendURL, s.invitations.AcceptPath, req.Token),
		ExpiresAt:    expiresLabel(expires),
	})
}

func (s *notifyService) MissingClockOut(ctx context.Context, req notification.NotifyMissingClockOutRequest) (notification.NotifyResponse, error) {
	if err := req.Validate(); err != nil {
		return notification.NotifyResponse{}, err
	}
	clockIn := req.ClockIn
	if clockIn == "" {
		clockIn = timecalc.ClockTimePlaceholder
	}
	return s.deliver(ctx, req.To, notification.MissingClockOut{
		EmployeeName: req.EmployeeName,
		Date:         req.Date,
		ClockIn:      clockIn,
	})
}

func (s *notifyService) deliver(ctx context.Context, to string, payload notification.Payload) (notification.NotifyResponse, error) {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return notification.NotifyResponse{}, err
	}
	id, err := s.dispatcher.Deliver(ctx, notification.Event{
		CompanyID: caller.CompanyID,
		To:        []notification.Recipient{{Email: to}},
		Payload:   payload,
	})
	if err != nil {
		return notification.NotifyResponse{}, err
	}
	return notification.NotifyResponse{MessageID: id}, nil
}
