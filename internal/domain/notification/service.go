package notification

import (
	"context"

	"github.com/punchcard-hq/punchcard-backend/internal/pkg/sse"
)

// Dispatcher delivers events produced by mutations.
type Dispatcher interface {
	// Dispatch runs after the write committed. It never fails; delivery problems come back as warnings.
	Dispatch(ctx context.Context, events []Event) []string

	// Deliver sends one event and returns the email message id.
	Deliver(ctx context.Context, event Event) (string, error)
}

// Service defines the in-app inbox for the caller (employee from JWT)
type Service interface {
	GetNotifications(ctx context.Context, req ListNotificationsRequest) (NotificationListResponse, error)
	GetUnreadCount(ctx context.Context) (int, error)
	MarkAsRead(ctx context.Context, notificationID string) error
	MarkAllAsRead(ctx context.Context) error

	// Subscribe registers an SSE listener for an employee
	Subscribe(employeeID string) (chan sse.Event, func())
}

// NotifyService backs the direct /notify endpoints
type NotifyService interface {
	ChangeRequest(ctx context.Context, req NotifyChangeRequestRequest) (NotifyResponse, error)
	ChangeRequestResolved(ctx context.Context, req NotifyResolvedRequest) (NotifyResponse, error)
	Invitation(ctx context.Context, req NotifyInvitationRequest) (NotifyResponse, error)
	MissingClockOut(ctx context.Context, req NotifyMissingClockOutRequest) (NotifyResponse, error)
}
