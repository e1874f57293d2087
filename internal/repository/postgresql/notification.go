package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/database"
)

type notificationRepository struct {
	db  database.Pool
	now func() time.Time
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db database.Pool) notification.Repository {
	return &notificationRepository{db: db, now: time.Now}
}

func (r *notificationRepository) prepare(n *notification.Notification) ([]byte, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.now().UTC()
	}
	if n.Data == nil {
		return nil, nil
	}
	dataJSON, err := json.Marshal(n.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification data: %w", err)
	}
	return dataJSON, nil
}

// Create creates a new notification
func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

// CreateBatch inserts every notification with a single statement
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(notifications))
	valueArgs := make([]interface{}, 0, len(notifications)*9)

	for i, n := range notifications {
		dataJSON, err := r.prepare(n)
		if err != nil {
			return err
		}

		base := i * 9
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		valueArgs = append(valueArgs,
			n.ID,
			n.CompanyID,
			n.RecipientID,
			string(n.Type),
			n.Title,
			n.Message,
			dataJSON,
			n.IsRead,
			n.CreatedAt,
		)
	}

	query := `
		INSERT INTO notifications (id, company_id, recipient_id, type, title, message, data, is_read, created_at)
		VALUES ` + strings.Join(valueStrings, ", ")

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

// GetByRecipient retrieves an employee's notifications, newest first
func (r *notificationRepository) GetByRecipient(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "recipient_id = $1"
	if unreadOnly {
		whereClause += " AND is_read = false"
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE "+whereClause, recipientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `
		SELECT id, company_id, recipient_id, type, title, message, data, is_read, read_at, created_at
		FROM notifications
		WHERE ` + whereClause + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := q.Query(ctx, query, recipientID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		var (
			n         notification.Notification
			dataJSON  []byte
			notifType string
		)
		if err := rows.Scan(
			&n.ID,
			&n.CompanyID,
			&n.RecipientID,
			&notifType,
			&n.Title,
			&n.Message,
			&dataJSON,
			&n.IsRead,
			&n.ReadAt,
			&n.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}

		n.Type = notification.NotificationType(notifType)
		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal notification data: %w", err)
			}
		}
		notifications = append(notifications, &n)
	}

	return notifications, total, rows.Err()
}

// GetUnreadCount returns the count of unread notifications for an employee
func (r *notificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = false`, recipientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAsRead marks one notification as read
func (r *notificationRepository) MarkAsRead(ctx context.Context, id string, recipientID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE notifications
		SET is_read = true, read_at = COALESCE(read_at, $1)
		WHERE id = $2 AND recipient_id = $3
	`, r.now().UTC(), id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead marks all notifications as read for an employee
func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE notifications
		SET is_read = true, read_at = $1
		WHERE recipient_id = $2 AND is_read = false
	`, r.now().UTC(), recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}
