package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeChangeRequestSubmitted NotificationType = "change_request_submitted"
	TypeChangeRequestResolved  NotificationType = "change_request_resolved"
	TypeVacationRequested      NotificationType = "vacation_requested"
	TypeVacationResolved       NotificationType = "vacation_resolved"
	TypeInvitation             NotificationType = "invitation"
	TypePeriodReport           NotificationType = "period_report"
	TypeMissingClockOut        NotificationType = "missing_clock_out"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeChangeRequestSubmitted,
		TypeChangeRequestResolved,
		TypeVacationRequested,
		TypeVacationResolved,
		TypeInvitation,
		TypePeriodReport,
		TypeMissingClockOut,
	}
}

// Notification is a persisted in-app inbox row
type Notification struct {
	ID          string
	CompanyID   string
	RecipientID string // employee id
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
