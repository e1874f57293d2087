package invitation

import (
	"testing"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
)

func TestNewToken(t *testing.T) {
	a, b := NewToken(), NewToken()
	assert.NotEqual(t, a, b)
	assert.True(t, validator.IsValidUUID(a))
}

func TestAcceptURL(t *testing.T) {
	assert.Equal(t,
		"https://app.example.com/accept-invite?token=abc",
		AcceptURL("https://app.example.com/", "accept-invite", "abc"))
	assert.Equal(t,
		"http://localhost:5173/invite?token=a+b",
		AcceptURL("http://localhost:5173", "/invite", "a b"))
}

func TestCheckAcceptable(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	expiry := 7 * 24 * time.Hour
	token := "tok"
	sent := now.Add(-24 * time.Hour)
	old := now.Add(-8 * 24 * time.Hour)
	accepted := now.Add(-time.Hour)

	pending := employee.Employee{IsActive: true, InviteToken: &token, InviteSentAt: &sent}
	assert.NoError(t, CheckAcceptable(pending, now, expiry))

	expired := pending
	expired.InviteSentAt = &old
	assert.ErrorIs(t, CheckAcceptable(expired, now, expiry), ErrExpired)

	done := pending
	done.InviteAcceptedAt = &accepted
	assert.ErrorIs(t, CheckAcceptable(done, now, expiry), ErrAlreadyAccepted)

	assert.ErrorIs(t, CheckAcceptable(employee.Employee{IsActive: true}, now, expiry), ErrNotFound)

	archived := pending
	archived.IsActive = false
	assert.ErrorIs(t, CheckAcceptable(archived, now, expiry), ErrNotFound)
}
