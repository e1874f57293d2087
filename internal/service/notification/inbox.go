package notification

import (
	"context"
	"fmt"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/sse"
)

type inboxService struct {
	repo notification.Repository
	hub  *sse.Hub
}

// NewNotificationService serves the caller's in-app inbox and SSE subscriptions.
func NewNotificationService(repo notification.Repository, hub *sse.Hub) notification.Service {
	return &inboxService{repo: repo, hub: hub}
}

func (s *inboxService) GetNotifications(ctx context.Context, req notification.ListNotificationsRequest) (notification.NotificationListResponse, error) {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return notification.NotificationListResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return notification.NotificationListResponse{}, err
	}

	rows, total, err := s.repo.GetByRecipient(ctx, caller.EmployeeID, req.Page, req.PageSize, req.UnreadOnly)
	if err != nil {
		return notification.NotificationListResponse{}, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := s.repo.GetUnreadCount(ctx, caller.EmployeeID)
	if err != nil {
		return notification.NotificationListResponse{}, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	items := make([]notification.NotificationResponse, 0, len(rows))
	for _, n := range rows {
		items = append(items, notification.NewNotificationResponse(n))
	}

	return notification.NotificationListResponse{
		Notifications: items,
		Total:         total,
		UnreadCount:   unread,
		Page:          req.Page,
		PageSize:      req.PageSize,
	}, nil
}

func (s *inboxService) GetUnreadCount(ctx context.Context) (int, error) {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.GetUnreadCount(ctx, caller.EmployeeID)
}

func (s *inboxService) MarkAsRead(ctx context.Context, notificationID string) error {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.MarkAsRead(ctx, notificationID, caller.EmployeeID); err != nil {
		return err
	}
	s.pushUnreadCount(ctx, caller.EmployeeID)
	return nil
}

func (s *inboxService) MarkAllAsRead(ctx context.Context) error {
	caller, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.MarkAllAsRead(ctx, caller.EmployeeID); err != nil {
		return err
	}
	s.pushUnreadCount(ctx, caller.EmployeeID)
	return nil
}

func (s *inboxService) Subscribe(employeeID string) (chan sse.Event, func()) {
	return s.hub.Subscribe(employeeID)
}

// pushUnreadCount keeps the caller's other open tabs in sync.
func (s *inboxService) pushUnreadCount(ctx context.Context, employeeID string) {
	if s.hub.SubscriberCount(employeeID) == 0 {
		return
	}
	count, err := s.repo.GetUnreadCount(ctx, employeeID)
	if err != nil {
		return
	}
	s.hub.Publish(employeeID, sse.Event{
		Event: sse.EventUnreadCount,
		Data:  notification.UnreadCountResponse{UnreadCount: count},
	})
}
