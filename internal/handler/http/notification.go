package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/response"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/sse"
)

const ssePingInterval = 30 * time.Second

// NotificationHandler defines the notification handler interface
type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	UnreadCount(w http.ResponseWriter, r *http.Request)
	MarkAsRead(w http.ResponseWriter, r *http.Request)
	MarkAllAsRead(w http.ResponseWriter, r *http.Request)

	// SSE
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifService notification.Service
	jwtService   jwt.Service
	pingInterval time.Duration
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifService notification.Service, jwtService jwt.Service) NotificationHandler {
	return &notificationHandlerImpl{
		notifService: notifService,
		jwtService:   jwtService,
		pingInterval: ssePingInterval,
	}
}

// List returns paginated notifications for the authenticated employee
func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req := notification.ListNotificationsRequest{
		Page:       getIntQueryParam(r, "page", 1),
		PageSize:   getIntQueryParam(r, "page_size", 20),
		UnreadOnly: getBoolQueryParam(r, "unread_only", false),
	}

	result, err := h.notifService.GetNotifications(r.Context(), req)
	if err != nil {
		slog.Error("GetNotifications service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// UnreadCount returns the number of unread notifications
func (h *notificationHandlerImpl) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifService.GetUnreadCount(r.Context())
	if err != nil {
		slog.Error("GetUnreadCount service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, notification.UnreadCountResponse{UnreadCount: count})
}

// MarkAsRead marks a single notification as read
func (h *notificationHandlerImpl) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.notifService.MarkAsRead(r.Context(), id); err != nil {
		slog.Error("MarkAsRead service error", "error", err, "id", id)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Notification marked as read", nil)
}

// MarkAllAsRead marks every notification of the caller as read
func (h *notificationHandlerImpl) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifService.MarkAllAsRead(r.Context()); err != nil {
		slog.Error("MarkAllAsRead service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "All notifications marked as read", nil)
}

// GetSSEToken generates a short-lived token for SSE connections
func (h *notificationHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	caller, err := jwt.CallerFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(caller.EmployeeID)
	if err != nil {
		slog.Error("GenerateSSEToken error", "error", err)
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, notification.SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles the SSE connection. EventSource cannot send headers, so the token comes in the query.
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	employeeID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	events, cleanup := h.notifService.Subscribe(employeeID)
	defer cleanup()

	slog.Debug("SSE stream opened", "employee_id", employeeID)
	defer slog.Debug("SSE stream closed", "employee_id", employeeID)

	keepalive := time.NewTicker(h.pingInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if _, err := event.WriteTo(w); err != nil {
				slog.Warn("SSE write failed", "employee_id", employeeID, "error", err)
				return
			}
			flusher.Flush()

		case now := <-keepalive.C:
			ping := sse.Event{
				ID:         uuid.NewString(),
				EmployeeID: employeeID,
				Event:      sse.EventPing,
				Data:       map[string]int64{"timestamp": now.Unix()},
			}
			if _, err := ping.WriteTo(w); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
