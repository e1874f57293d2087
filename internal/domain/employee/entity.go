package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                string
	CompanyID         string
	Name              string
	Email             *string
	Role              string // free-text job title
	HourlyRate        *decimal.Decimal
	VacationDaysTotal int
	IsAdmin           bool
	IsBookkeeper      bool
	IsActive          bool
	PasswordHash      *string
	InviteToken       *string
	InviteSentAt      *time.Time
	InviteAcceptedAt  *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AccessRole is the capability level carried in access tokens.
type AccessRole string

const (
	AccessRoleAdmin      AccessRole = "admin"
	AccessRoleBookkeeper AccessRole = "bookkeeper"
	AccessRoleEmployee   AccessRole = "employee"
)

func (e Employee) AccessRole() AccessRole {
	switch {
	case e.IsAdmin:
		return AccessRoleAdmin
	case e.IsBookkeeper:
		return AccessRoleBookkeeper
	default:
		return AccessRoleEmployee
	}
}

// IsTrackedWorker reports whether the employee's hours go into payroll.
func (e Employee) IsTrackedWorker() bool {
	return !e.IsAdmin && !e.IsBookkeeper
}

// CanLogin is true once the invitation was accepted and a password exists.
func (e Employee) CanLogin() bool {
	return e.IsActive && e.PasswordHash != nil && *e.PasswordHash != ""
}

// InvitationStatus values exposed in employee responses.
type InvitationStatus string

const (
	InvitationNone     InvitationStatus = "none"
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

// InvitationState classifies the invitation lifecycle at now.
func (e Employee) InvitationState(now time.Time, expiry time.Duration) InvitationStatus {
	switch {
	case e.InviteAcceptedAt != nil:
		return InvitationAccepted
	case e.InviteToken == nil || e.InviteSentAt == nil:
		return InvitationNone
	case expiry > 0 && now.After(e.InviteSentAt.Add(expiry)):
		return InvitationExpired
	default:
		return InvitationPending
	}
}
