package invitation

import (
	"context"
	"fmt"

	"github.com/punchcard-hq/punchcard-backend/internal/config"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/invitation"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
)

type issuer struct {
	employeeRepo employee.EmployeeRepository
	frontendURL  string
	cfg          config.InvitationConfig
	clock        timecalc.Clock
}

func NewIssuer(employeeRepo employee.EmployeeRepository, frontendURL string, cfg config.InvitationConfig, clock timecalc.Clock) invitation.Issuer {
	return &issuer{
		employeeRepo: employeeRepo,
		frontendURL:  frontendURL,
		cfg:          cfg,
		clock:        clock,
	}
}

// Issue replaces any previous token, so only the newest link works.
func (i *issuer) Issue(ctx context.Context, e employee.Employee, companyName string) (notification.Event, error) {
	if e.Email == nil || *e.Email == "" {
		return notification.Event{}, employee.ErrNoEmail
	}
	if e.InviteAcceptedAt != nil {
		return notification.Event{}, employee.ErrInvitationAccepted
	}

	token := invitation.NewToken()
	if err := i.employeeRepo.SetInvitation(ctx, e.ID, e.CompanyID, token); err != nil {
		return notification.Event{}, fmt.Errorf("failed to store invitation token: %w", err)
	}

	expiresAt := invitation.ExpiresAt(i.clock.Now(), i.cfg.Expiry)
	return notification.Event{
		CompanyID: e.CompanyID,
		// The invitee cannot log in yet, so there is no inbox row.
		To: []notification.Recipient{{Name: e.Name, Email: *e.Email}},
		Payload: notification.Invitation{
			EmployeeName: e.Name,
			CompanyName:  companyName,
			Token:        token,
			AcceptURL:    invitation.AcceptURL(i.frontendURL, i.cfg.AcceptPath, token),
			ExpiresAt:    expiresAt.UTC().Format("Jan 2, 2006"),
		},
	}, nil
}
