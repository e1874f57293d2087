package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoRecipients         = errors.New("notification has no recipients")
	ErrDeliveryFailed       = errors.New("notification delivery failed")
)
