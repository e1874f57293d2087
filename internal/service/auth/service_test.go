package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/config"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/auth"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/company"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/invitation"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/settings"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

const (
	inviteToken = "0b9c6f5e-4a0e-4f51-9d8b-3f6f0a6f1c11"
	password    = "correct horse"
)

type memoryEmployees struct {
	employee.EmployeeRepository
	byID   map[string]employee.Employee
	nextID int
}

func (m *memoryEmployees) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	m.nextID++
	e.ID = fmt.Sprintf("emp-%d", m.nextID)
	m.byID[e.ID] = e
	return e, nil
}

func (m *memoryEmployees) ExistsByEmail(_ context.Context, email string, _ *string) (bool, error) {
	_, err := m.GetByEmail(context.Background(), email)
	return err == nil, nil
}

func (m *memoryEmployees) GetByEmail(_ context.Context, email string) (employee.Employee, error) {
	for _, e := range m.byID {
		if e.Email != nil && *e.Email == email {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (m *memoryEmployees) GetByIDUnscoped(_ context.Context, id string) (employee.Employee, error) {
	e, ok := m.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *memoryEmployees) GetByInviteToken(_ context.Context, token string) (employee.Employee, error) {
	for _, e := range m.byID {
		if e.InviteToken != nil && *e.InviteToken == token {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (m *memoryEmployees) AcceptInvitation(_ context.Context, id, hash string) error {
	e := m.byID[id]
	e.PasswordHash = &hash
	accepted := testNow
	e.InviteAcceptedAt = &accepted
	e.InviteToken = nil
	m.byID[id] = e
	return nil
}

type memoryCompanies struct {
	company.CompanyRepository
	created []company.Company
}

func (m *memoryCompanies) Create(_ context.Context, c company.Company) (company.Company, error) {
	c.ID = fmt.Sprintf("co-%d", len(m.created)+1)
	m.created = append(m.created, c)
	return c, nil
}

type memorySettings struct {
	settings.SettingsRepository
	rows map[string]settings.AppSettings
}

func (m *memorySettings) Upsert(_ context.Context, s settings.AppSettings) (settings.AppSettings, error) {
	m.rows[s.CompanyID] = s
	return s, nil
}

type memoryRefreshTokens struct {
	active  map[string]string
	revoked map[string]bool
}

func (m *memoryRefreshTokens) CreateRefreshToken(_ context.Context, employeeID, token string, _ int64, _ auth.SessionTrackingRequest) error {
	m.active[token] = employeeID
	return nil
}

// IsRefreshTokenRevoked treats unknown tokens as revoked, like the database does.
func (m *memoryRefreshTokens) IsRefreshTokenRevoked(_ context.Context, token string) (bool, error) {
	_, ok := m.active[token]
	return !ok || m.revoked[token], nil
}

func (m *memoryRefreshTokens) RevokeRefreshToken(_ context.Context, token string) error {
	m.revoked[token] = true
	return nil
}

func (m *memoryRefreshTokens) RevokeAllForEmployee(_ context.Context, employeeID string) error {
	for token, id := range m.active {
		if id == employeeID {
			m.revoked[token] = true
		}
	}
	return nil
}

type noTx struct{}

func (noTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc       auth.AuthService
	employees *memoryEmployees
	companies *memoryCompanies
	settings  *memorySettings
	tokens    *memoryRefreshTokens
	jwt       jwt.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	hashed := string(hash)

	email := "ann@acme.test"
	archivedEmail := "gone@acme.test"
	inviteeEmail := "new@acme.test"
	token := inviteToken
	sent := testNow.Add(-24 * time.Hour)

	employees := &memoryEmployees{byID: map[string]employee.Employee{
		"ann":     {ID: "ann", CompanyID: "co-1", Name: "Ann", Email: &email, IsActive: true, PasswordHash: &hashed},
		"gone":    {ID: "gone", CompanyID: "co-1", Name: "Gone", Email: &archivedEmail, IsActive: false, PasswordHash: &hashed},
		"invitee": {ID: "invitee", CompanyID: "co-1", Name: "New", Email: &inviteeEmail, IsActive: true, InviteToken: &token, InviteSentAt: &sent},
	}}
	jwtService, err := jwt.NewJWTService("test-secret", "15m", "168h")
	require.NoError(t, err)

	f := fixture{
		employees: employees,
		companies: &memoryCompanies{},
		settings:  &memorySettings{rows: map[string]settings.AppSettings{}},
		tokens:    &memoryRefreshTokens{active: map[string]string{}, revoked: map[string]bool{}},
		jwt:       jwtService,
	}
	f.svc = NewAuthService(f.employees, f.companies, f.settings, f.tokens, jwtService, noTx{},
		config.InvitationConfig{Expiry: 7 * 24 * time.Hour}, timecalc.FixedClock{At: testNow})
	return f
}

var session = auth.SessionTrackingRequest{UserAgent: "test", IPAddress: "127.0.0.1"}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Register(context.Background(), auth.RegisterRequest{
		CompanyName:     "Bakery",
		Name:            "Olga",
		Email:           "Olga@Bakery.test",
		Password:        password,
		ConfirmPassword: password,
		Timezone:        "Europe/Berlin",
	}, session)
	require.NoError(t, err)

	assert.Equal(t, "co-1", resp.CompanyID)
	assert.Equal(t, string(employee.AccessRoleAdmin), resp.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Contains(t, f.tokens.active, resp.RefreshToken)

	owner := f.employees.byID[resp.EmployeeID]
	assert.True(t, owner.IsAdmin)
	assert.Equal(t, "olga@bakery.test", *owner.Email)
	assert.True(t, owner.CanLogin())
	assert.Equal(t, employee.InvitationAccepted, owner.InvitationState(testNow, time.Hour))

	s := f.settings.rows["co-1"]
	assert.Equal(t, "Bakery", s.CompanyName)
	assert.Equal(t, "Europe/Berlin", s.Timezone)
	assert.Equal(t, "12:00", s.HalfSickCutoff)
	assert.Equal(t, "olga@bakery.test", *s.OwnerEmail)
}

func TestRegister_EmailTaken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), auth.RegisterRequest{
		CompanyName: "Other", Name: "Ann", Email: "ann@acme.test", Password: password, ConfirmPassword: password,
	}, session)
	assert.ErrorIs(t, err, employee.ErrEmailExists)
	assert.Empty(t, f.companies.created)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: " ANN@acme.test", Password: password}, session)
	require.NoError(t, err)
	assert.Equal(t, "ann", resp.EmployeeID)
	assert.Equal(t, string(employee.AccessRoleEmployee), resp.Role)

	_, err = f.svc.Login(context.Background(), auth.LoginRequest{Email: "ann@acme.test", Password: "wrong password"}, session)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), auth.LoginRequest{Email: "nobody@acme.test", Password: password}, session)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), auth.LoginRequest{Email: "new@acme.test", Password: password}, session)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials, "invitation not accepted yet")

	_, err = f.svc.Login(context.Background(), auth.LoginRequest{Email: "gone@acme.test", Password: password}, session)
	assert.ErrorIs(t, err, auth.ErrAccountArchived)
}

func TestRefreshToken_Rotates(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "ann@acme.test", Password: password}, session)
	require.NoError(t, err)

	second, err := f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: first.RefreshToken}, session)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, "co-1", second.CompanyID)

	_, err = f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: first.RefreshToken}, session)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

	_, err = f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: "not-a-jwt"}, session)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRefreshToken_ArchivedEmployee(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "ann@acme.test", Password: password}, session)
	require.NoError(t, err)

	ann := f.employees.byID["ann"]
	ann.IsActive = false
	f.employees.byID["ann"] = ann

	_, err = f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: resp.RefreshToken}, session)
	assert.ErrorIs(t, err, auth.ErrAccountArchived)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "ann@acme.test", Password: password}, session)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), auth.RefreshTokenRequest{RefreshToken: resp.RefreshToken}))
	assert.True(t, f.tokens.revoked[resp.RefreshToken])
	require.NoError(t, f.svc.Logout(context.Background(), auth.RefreshTokenRequest{RefreshToken: resp.RefreshToken}))

	_, err = f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: resp.RefreshToken}, session)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
}

func TestAcceptInvitation(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.AcceptInvitation(context.Background(), auth.AcceptInvitationRequest{
		Token: inviteToken, Password: password, ConfirmPassword: password,
	}, session)
	require.NoError(t, err)
	assert.Equal(t, "invitee", resp.EmployeeID)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = f.svc.Login(context.Background(), auth.LoginRequest{Email: "new@acme.test", Password: password}, session)
	require.NoError(t, err)

	_, err = f.svc.AcceptInvitation(context.Background(), auth.AcceptInvitationRequest{
		Token: inviteToken, Password: password, ConfirmPassword: password,
	}, session)
	assert.ErrorIs(t, err, invitation.ErrNotFound, "tokens are single use")
}

func TestAcceptInvitation_Expired(t *testing.T) {
	f := newFixture(t)
	invitee := f.employees.byID["invitee"]
	old := testNow.Add(-30 * 24 * time.Hour)
	invitee.InviteSentAt = &old
	f.employees.byID["invitee"] = invitee

	_, err := f.svc.AcceptInvitation(context.Background(), auth.AcceptInvitationRequest{
		Token: inviteToken, Password: password, ConfirmPassword: password,
	}, session)
	assert.ErrorIs(t, err, invitation.ErrExpired)
}
