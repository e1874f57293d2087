package invitation

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
)

// NewToken returns a fresh one-time acceptance token.
func NewToken() string {
	return uuid.NewString()
}

// AcceptURL builds the link the invitee opens to set a password.
func AcceptURL(frontendURL, acceptPath, token string) string {
	base := strings.TrimRight(frontendURL, "/")
	path := "/" + strings.TrimLeft(acceptPath, "/")
	return base + path + "?token=" + url.QueryEscape(token)
}

// ExpiresAt is when an invitation sent at sentAt stops being accepted.
func ExpiresAt(sentAt time.Time, expiry time.Duration) time.Time {
	return sentAt.Add(expiry)
}

// CheckAcceptable reports why an employee's invitation cannot be accepted at now, or nil.
func CheckAcceptable(e employee.Employee, now time.Time, expiry time.Duration) error {
	switch e.InvitationState(now, expiry) {
	case employee.InvitationAccepted:
		return ErrAlreadyAccepted
	case employee.InvitationExpired:
		return ErrExpired
	case employee.InvitationNone:
		return ErrNotFound
	}
	if !e.IsActive {
		return ErrNotFound
	}
	return nil
}
