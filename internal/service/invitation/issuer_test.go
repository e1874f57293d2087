package invitation

import (
	"context"
	"testing"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/config"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenStore struct {
	employee.EmployeeRepository
	tokens map[string]string
}

func (s *tokenStore) SetInvitation(_ context.Context, id, _ string, token string) error {
	s.tokens[id] = token
	return nil
}

func TestIssue(t *testing.T) {
	store := &tokenStore{tokens: map[string]string{}}
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewIssuer(store, "https://app.acme.test/", config.InvitationConfig{Expiry: 7 * 24 * time.Hour, AcceptPath: "/accept-invite"}, timecalc.FixedClock{At: now})

	email := "ann@acme.test"
	event, err := issuer.Issue(context.Background(), employee.Employee{ID: "e1", CompanyID: "co-1", Name: "Ann", Email: &email}, "Acme")
	require.NoError(t, err)

	token := store.tokens["e1"]
	require.NotEmpty(t, token)

	assert.Equal(t, "co-1", event.CompanyID)
	assert.Equal(t, []notification.Recipient{{Name: "Ann", Email: email}}, event.To)
	payload := event.Payload.(notification.Invitation)
	assert.Equal(t, "https://app.acme.test/accept-invite?token="+token, payload.AcceptURL)
	assert.Equal(t, "Mar 8, 2024", payload.ExpiresAt)
	assert.Equal(t, "Acme", payload.CompanyName)

	again, err := issuer.Issue(context.Background(), employee.Employee{ID: "e1", CompanyID: "co-1", Name: "Ann", Email: &email}, "Acme")
	require.NoError(t, err)
	assert.NotEqual(t, token, again.Payload.(notification.Invitation).Token)
}

func TestIssue_Rejects(t *testing.T) {
	issuer := NewIssuer(&tokenStore{tokens: map[string]string{}}, "http://localhost", config.InvitationConfig{}, timecalc.SystemClock{})

	_, err := issuer.Issue(context.Background(), employee.Employee{ID: "e1"}, "Acme")
	assert.ErrorIs(t, err, employee.ErrNoEmail)

	email := "ann@acme.test"
	accepted := time.Now()
	_, err = issuer.Issue(context.Background(), employee.Employee{ID: "e1", Email: &email, InviteAcceptedAt: &accepted}, "Acme")
	assert.ErrorIs(t, err, employee.ErrInvitationAccepted)
}
