package notification

import (
	"strings"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/pkg/validator"
)

// ============= Request DTOs =============

// ListNotificationsRequest represents a request to list notifications
type ListNotificationsRequest struct {
	Page       int
	PageSize   int
	UnreadOnly bool
}

func (r *ListNotificationsRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if r.Page == 0 {
		r.Page = 1
	}
	if r.PageSize < 0 || r.PageSize > 100 {
		errs.Add("page_size", "page_size must be between 1 and 100")
	}
	if r.PageSize == 0 {
		r.PageSize = 20
	}
	return errs.OrNil()
}

type NotifyChangeRequestRequest struct {
	To           string `json:"to"`
	EmployeeName string `json:"employee_name"`
	Date         string `json:"date"`
	Summary      string `json:"summary"`
	Reason       string `json:"reason"`
}

func (r *NotifyChangeRequestRequest) Validate() error {
	var errs validator.ValidationErrors
	validateRecipient(&r.To, &errs)
	requireField("employee_name", r.EmployeeName, &errs)
	requireDate(r.Date, &errs)
	requireField("summary", r.Summary, &errs)
	return errs.OrNil()
}

type NotifyResolvedRequest struct {
	To           string      `json:"to"`
	EmployeeName string      `json:"employee_name"`
	Date         string      `json:"date"`
	Status       string      `json:"status"`
	Kind         RequestKind `json:"kind"`
	Note         string      `json:"note"`
}

func (r *NotifyResolvedRequest) Validate() error {
	var errs validator.ValidationErrors
	validateRecipient(&r.To, &errs)
	requireField("employee_name", r.EmployeeName, &errs)
	requireDate(r.Date, &errs)
	if !validator.IsInSlice(r.Status, []string{"approved", "rejected"}) {
		errs.Add("status", "status must be approved or rejected")
	}
	if r.Kind == "" {
		r.Kind = RequestKindChange
	}
	if r.Kind != RequestKindChange && r.Kind != RequestKindVacation {
		errs.Add("kind", "kind must be change_request or vacation")
	}
	return errs.OrNil()
}

type NotifyInvitationRequest struct {
	To           string `json:"to"`
	EmployeeName string `json:"employee_name"`
	CompanyName  string `json:"company_name"`
	Token        string `json:"token"`
}

func (r *NotifyInvitationRequest) Validate() error {
	var errs validator.ValidationErrors
	validateRecipient(&r.To, &errs)
	requireField("employee_name", r.EmployeeName, &errs)
	requireField("company_name", r.CompanyName, &errs)
	requireField("token", r.Token, &errs)
	return errs.OrNil()
}

type NotifyMissingClockOutRequest struct {
	To           string `json:"to"`
	EmployeeName string `json:"employee_name"`
	Date         string `json:"date"`
	ClockIn      string `json:"clock_in"`
}

func (r *NotifyMissingClockOutRequest) Validate() error {
	var errs validator.ValidationErrors
	validateRecipient(&r.To, &errs)
	requireField("employee_name", r.EmployeeName, &errs)
	requireDate(r.Date, &errs)
	return errs.OrNil()
}

func validateRecipient(to *string, errs *validator.ValidationErrors) {
	*to = strings.ToLower(strings.TrimSpace(*to))
	if *to == "" {
		errs.Add("to", "to is required")
	} else if !validator.IsValidEmail(*to) {
		errs.Add("to", "to must be a valid email address")
	}
}

func requireField(field, value string, errs *validator.ValidationErrors) {
	if validator.IsEmpty(value) {
		errs.Add(field, field+" is required")
	}
}

func requireDate(date string, errs *validator.ValidationErrors) {
	if _, ok := validator.IsValidDate(date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
}

// ============= Response DTOs =============

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func NewNotificationResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	UnreadCount   int                    `json:"unread_count"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

// UnreadCountResponse represents unread count response
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// SSETokenResponse represents the SSE token response
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// NotifyResponse is returned by the direct notify endpoints
type NotifyResponse struct {
	MessageID string `json:"message_id"`
}
