package employee

import (
	"strings"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	Name              string           `json:"name"`
	Email             *string          `json:"email,omitempty"`
	Role              string           `json:"role"`
	HourlyRate        *decimal.Decimal `json:"hourly_rate,omitempty"`
	VacationDaysTotal int              `json:"vacation_days_total"`
	IsAdmin           bool             `json:"is_admin"`
	IsBookkeeper      bool             `json:"is_bookkeeper"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 100 {
		errs.Add("name", "name must not exceed 100 characters")
	}

	r.Email = normalizeEmail(r.Email)
	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs.Add("email", "email format is invalid")
	}
	if len(r.Role) > 100 {
		errs.Add("role", "role must not exceed 100 characters")
	}
	if r.HourlyRate != nil && r.HourlyRate.IsNegative() {
		errs.Add("hourly_rate", "hourly_rate must not be negative")
	}
	if r.VacationDaysTotal < 0 {
		errs.Add("vacation_days_total", "vacation_days_total must not be negative")
	}
	if r.IsAdmin && r.IsBookkeeper {
		errs.Add("is_bookkeeper", ErrAdminAndBookkeeper.Error())
	}

	return errs.OrNil()
}

// UpdateEmployeeRequest is a partial update. Nil members are left unchanged.
type UpdateEmployeeRequest struct {
	ID                string           `json:"-"`
	Name              *string          `json:"name,omitempty"`
	Email             *string          `json:"email,omitempty"`
	Role              *string          `json:"role,omitempty"`
	HourlyRate        *decimal.Decimal `json:"hourly_rate,omitempty"`
	ClearHourlyRate   bool             `json:"clear_hourly_rate,omitempty"`
	VacationDaysTotal *int             `json:"vacation_days_total,omitempty"`
	IsAdmin           *bool            `json:"is_admin,omitempty"`
	IsBookkeeper      *bool            `json:"is_bookkeeper,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
		if name == "" {
			errs.Add("name", "name cannot be empty")
		} else if len(name) > 100 {
			errs.Add("name", "name must not exceed 100 characters")
		}
	}
	if r.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &email
		if email != "" && !validator.IsValidEmail(email) {
			errs.Add("email", "email format is invalid")
		}
	}
	if r.Role != nil && len(*r.Role) > 100 {
		errs.Add("role", "role must not exceed 100 characters")
	}
	if r.HourlyRate != nil && r.HourlyRate.IsNegative() {
		errs.Add("hourly_rate", "hourly_rate must not be negative")
	}
	if r.VacationDaysTotal != nil && *r.VacationDaysTotal < 0 {
		errs.Add("vacation_days_total", "vacation_days_total must not be negative")
	}
	if r.IsAdmin != nil && r.IsBookkeeper != nil && *r.IsAdmin && *r.IsBookkeeper {
		errs.Add("is_bookkeeper", ErrAdminAndBookkeeper.Error())
	}

	return errs.OrNil()
}

// Apply lays the update over e. The caller re-checks that admin and bookkeeper stay exclusive.
func (r *UpdateEmployeeRequest) Apply(e Employee) Employee {
	if r.Name != nil {
		e.Name = *r.Name
	}
	if r.Email != nil {
		if *r.Email == "" {
			e.Email = nil
		} else {
			email := *r.Email
			e.Email = &email
		}
	}
	if r.Role != nil {
		e.Role = *r.Role
	}
	if r.ClearHourlyRate {
		e.HourlyRate = nil
	} else if r.HourlyRate != nil {
		rate := *r.HourlyRate
		e.HourlyRate = &rate
	}
	if r.VacationDaysTotal != nil {
		e.VacationDaysTotal = *r.VacationDaysTotal
	}
	if r.IsAdmin != nil {
		e.IsAdmin = *r.IsAdmin
	}
	if r.IsBookkeeper != nil {
		e.IsBookkeeper = *r.IsBookkeeper
	}
	return e
}

type EmployeeFilter struct {
	Search          string `json:"search"`
	IncludeInactive bool   `json:"include_inactive"`
	Page            int    `json:"page"`
	Limit           int    `json:"limit"`
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		errs.Add("limit", "limit must not exceed 200")
	}

	return errs.OrNil()
}

type EmployeeResponse struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Email             *string          `json:"email,omitempty"`
	Role              string           `json:"role"`
	HourlyRate        *decimal.Decimal `json:"hourly_rate,omitempty"`
	VacationDaysTotal int              `json:"vacation_days_total"`
	IsAdmin           bool             `json:"is_admin"`
	IsBookkeeper      bool             `json:"is_bookkeeper"`
	AccessRole        AccessRole       `json:"access_role"`
	IsActive          bool             `json:"is_active"`
	InvitationStatus  InvitationStatus `json:"invitation_status"`
	InviteSentAt      *string          `json:"invite_sent_at,omitempty"`
	InviteAcceptedAt  *string          `json:"invite_accepted_at,omitempty"`
	CreatedAt         string           `json:"created_at"`
}

// NewEmployeeResponse maps an employee for output. Password hash and invite token never leave the service.
func NewEmployeeResponse(e Employee, now time.Time, inviteExpiry time.Duration) EmployeeResponse {
	return EmployeeResponse{
		ID:                e.ID,
		Name:              e.Name,
		Email:             e.Email,
		Role:              e.Role,
		HourlyRate:        e.HourlyRate,
		VacationDaysTotal: e.VacationDaysTotal,
		IsAdmin:           e.IsAdmin,
		IsBookkeeper:      e.IsBookkeeper,
		AccessRole:        e.AccessRole(),
		IsActive:          e.IsActive,
		InvitationStatus:  e.InvitationState(now, inviteExpiry),
		InviteSentAt:      formatOptionalTime(e.InviteSentAt),
		InviteAcceptedAt:  formatOptionalTime(e.InviteAcceptedAt),
		CreatedAt:         e.CreatedAt.Format(time.RFC3339),
	}
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Employees  []EmployeeResponse `json:"employees"`
}

// MutationResponse carries notification warnings alongside the saved employee.
type MutationResponse struct {
	Employee EmployeeResponse `json:"employee"`
	Warnings []string         `json:"-"`
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
