package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/config"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/company"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

type memoryEmployees struct {
	employee.EmployeeRepository
	byID   map[string]employee.Employee
	nextID int
}

func newMemoryEmployees(seed ...employee.Employee) *memoryEmployees {
	m := &memoryEmployees{byID: map[string]employee.Employee{}}
	for _, e := range seed {
		m.byID[e.ID] = e
	}
	return m
}

func (m *memoryEmployees) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	m.nextID++
	e.ID = fmt.Sprintf("new-%d", m.nextID)
	e.CreatedAt = testNow
	m.byID[e.ID] = e
	return e, nil
}

func (m *memoryEmployees) Update(_ context.Context, e employee.Employee) (employee.Employee, error) {
	m.byID[e.ID] = e
	return e, nil
}

func (m *memoryEmployees) GetByID(_ context.Context, id, companyID string) (employee.Employee, error) {
	e, ok := m.byID[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *memoryEmployees) ExistsByEmail(_ context.Context, email string, excludeID *string) (bool, error) {
	for _, e := range m.byID {
		if e.Email != nil && *e.Email == email && (excludeID == nil || *excludeID != e.ID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryEmployees) List(_ context.Context, filter employee.Filter, companyID string) ([]employee.Employee, int64, error) {
	var out []employee.Employee
	for _, e := range m.byID {
		if e.CompanyID == companyID && (filter.IncludeInactive || e.IsActive) && strings.Contains(e.Name, filter.Search) {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryEmployees) SetActive(_ context.Context, id, _ string, active bool) error {
	e := m.byID[id]
	e.IsActive = active
	m.byID[id] = e
	return nil
}

type fakeCompanies struct {
	company.CompanyRepository
}

func (fakeCompanies) GetByID(_ context.Context, id string) (company.Company, error) {
	return company.Company{ID: id, Name: "Acme"}, nil
}

// fakeIssuer stamps the token on the stored employee like the real issuer does.
type fakeIssuer struct {
	repo   *memoryEmployees
	issued []string
	err    error
}

func (f *fakeIssuer) Issue(_ context.Context, e employee.Employee, companyName string) (notification.Event, error) {
	if f.err != nil {
		return notification.Event{}, f.err
	}
	if e.Email == nil {
		return notification.Event{}, employee.ErrNoEmail
	}
	if e.InviteAcceptedAt != nil {
		return notification.Event{}, employee.ErrInvitationAccepted
	}
	token := fmt.Sprintf("tok-%d", len(f.issued)+1)
	stored := f.repo.byID[e.ID]
	stored.InviteToken = &token
	sent := testNow
	stored.InviteSentAt = &sent
	f.repo.byID[e.ID] = stored
	f.issued = append(f.issued, *e.Email)
	return notification.Event{
		CompanyID: e.CompanyID,
		To:        []notification.Recipient{{Name: e.Name, Email: *e.Email}},
		Payload:   notification.Invitation{EmployeeName: e.Name, CompanyName: companyName, Token: token},
	}, nil
}

type noTx struct{}

func (noTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingDispatcher struct {
	events   []notification.Event
	warnings []string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, events []notification.Event) []string {
	d.events = append(d.events, events...)
	if len(events) == 0 {
		return nil
	}
	return d.warnings
}

func (d *recordingDispatcher) Deliver(context.Context, notification.Event) (string, error) {
	return "", errors.New("not used")
}

type fixture struct {
	svc        employee.EmployeeService
	repo       *memoryEmployees
	issuer     *fakeIssuer
	dispatcher *recordingDispatcher
}

func strPtr(s string) *string { return &s }

func newFixture() fixture {
	accepted := testNow.Add(-24 * time.Hour)
	repo := newMemoryEmployees(
		employee.Employee{ID: "boss", CompanyID: "co-1", Name: "Boss", Email: strPtr("boss@acme.test"), IsAdmin: true, IsActive: true, InviteAcceptedAt: &accepted},
		employee.Employee{ID: "ann", CompanyID: "co-1", Name: "Ann", Email: strPtr("ann@acme.test"), IsActive: true},
		employee.Employee{ID: "old", CompanyID: "co-1", Name: "Old Timer", IsActive: false},
		employee.Employee{ID: "other", CompanyID: "co-2", Name: "Elsewhere", IsActive: true},
	)
	issuer := &fakeIssuer{repo: repo}
	d := &recordingDispatcher{}
	svc := NewEmployeeService(repo, fakeCompanies{}, issuer, noTx{}, d,
		config.InvitationConfig{Expiry: 7 * 24 * time.Hour}, timecalc.FixedClock{At: testNow})
	return fixture{svc: svc, repo: repo, issuer: issuer, dispatcher: d}
}

func adminCtx() context.Context {
	return jwt.WithCaller(context.Background(), jwt.AccessClaims{EmployeeID: "boss", CompanyID: "co-1", Role: employee.AccessRoleAdmin})
}

func TestCreateEmployee_SendsInvitation(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.CreateEmployee(adminCtx(), employee.CreateEmployeeRequest{Name: " Cara ", Email: strPtr("Cara@Acme.test"), Role: "Cook"})
	require.NoError(t, err)

	assert.Equal(t, "Cara", resp.Employee.Name)
	assert.Equal(t, "cara@acme.test", *resp.Employee.Email)
	assert.Equal(t, employee.InvitationPending, resp.Employee.InvitationStatus)
	assert.Equal(t, employee.AccessRoleEmployee, resp.Employee.AccessRole)
	assert.Empty(t, resp.Warnings)

	require.Len(t, f.dispatcher.events, 1)
	assert.Equal(t, "Acme", f.dispatcher.events[0].Payload.(notification.Invitation).CompanyName)
}

func TestCreateEmployee_WithoutEmail(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.CreateEmployee(adminCtx(), employee.CreateEmployeeRequest{Name: "Dan"})
	require.NoError(t, err)
	assert.Equal(t, employee.InvitationNone, resp.Employee.InvitationStatus)
	assert.Empty(t, f.issuer.issued)
	assert.Empty(t, f.dispatcher.events)
}

func TestCreateEmployee_Rules(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateEmployee(adminCtx(), employee.CreateEmployeeRequest{Name: "Dup", Email: strPtr("ann@acme.test")})
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	_, err = f.svc.CreateEmployee(adminCtx(), employee.CreateEmployeeRequest{Name: "Both", IsAdmin: true, IsBookkeeper: true})
	assert.Error(t, err)

	_, err = f.svc.CreateEmployee(context.Background(), employee.CreateEmployeeRequest{Name: "Nobody"})
	assert.ErrorIs(t, err, jwt.ErrMissingClaims)
}

func TestCreateEmployee_DeliveryWarning(t *testing.T) {
	f := newFixture()
	f.dispatcher.warnings = []string{notification.WarningFor(notification.TypeInvitation)}

	resp, err := f.svc.CreateEmployee(adminCtx(), employee.CreateEmployeeRequest{Name: "Eve", Email: strPtr("eve@acme.test")})
	require.NoError(t, err)
	assert.Equal(t, f.dispatcher.warnings, resp.Warnings)
	assert.NotEmpty(t, resp.Employee.ID)
}

func TestUpdateEmployee(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.UpdateEmployee(adminCtx(), employee.UpdateEmployeeRequest{ID: "ann", Role: strPtr("Barista"), IsBookkeeper: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "Barista", resp.Employee.Role)
	assert.Equal(t, employee.AccessRoleBookkeeper, resp.Employee.AccessRole)
	assert.Empty(t, f.issuer.issued, "unchanged email sends nothing")

	_, err = f.svc.UpdateEmployee(adminCtx(), employee.UpdateEmployeeRequest{ID: "ann", IsAdmin: boolPtr(true)})
	assert.ErrorIs(t, err, employee.ErrAdminAndBookkeeper)

	_, err = f.svc.UpdateEmployee(adminCtx(), employee.UpdateEmployeeRequest{ID: "boss", IsAdmin: boolPtr(false)})
	assert.ErrorIs(t, err, employee.ErrCannotDemoteSelf)

	_, err = f.svc.UpdateEmployee(adminCtx(), employee.UpdateEmployeeRequest{ID: "ann", Email: strPtr("boss@acme.test")})
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	_, err = f.svc.UpdateEmployee(adminCtx(), employee.UpdateEmployeeRequest{ID: "other", Name: strPtr("x")})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestUpdateEmployee_EmailChangeReissues(t *testing.T) {
	f := newFixture()

	_, err := f.svc.UpdateEmployee(adminCtx(), employee.UpdateEmployeeRequest{ID: "ann", Email: strPtr("ann.new@acme.test")})
	require.NoError(t, err)
	assert.Equal(t, []string{"ann.new@acme.test"}, f.issuer.issued)

	_, err = f.svc.UpdateEmployee(adminCtx(), employee.UpdateEmployeeRequest{ID: "boss", Email: strPtr("owner@acme.test")})
	require.NoError(t, err)
	assert.Len(t, f.issuer.issued, 1, "accepted invitations are not re-sent")
}

func TestArchiveAndRestore(t *testing.T) {
	f := newFixture()

	assert.ErrorIs(t, f.svc.ArchiveEmployee(adminCtx(), "boss"), employee.ErrCannotArchiveSelf)
	assert.ErrorIs(t, f.svc.ArchiveEmployee(adminCtx(), "old"), employee.ErrEmployeeAlreadyInactive)

	require.NoError(t, f.svc.ArchiveEmployee(adminCtx(), "ann"))
	assert.False(t, f.repo.byID["ann"].IsActive)

	list, err := f.svc.ListEmployees(adminCtx(), employee.EmployeeFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)

	resp, err := f.svc.RestoreEmployee(adminCtx(), "ann")
	require.NoError(t, err)
	assert.True(t, resp.IsActive)

	_, err = f.svc.RestoreEmployee(adminCtx(), "ann")
	assert.ErrorIs(t, err, employee.ErrEmployeeAlreadyActive)
}

func TestResendInvitation(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.ResendInvitation(adminCtx(), "ann")
	require.NoError(t, err)
	assert.Equal(t, employee.InvitationPending, resp.Employee.InvitationStatus)
	require.Len(t, f.dispatcher.events, 1)

	_, err = f.svc.ResendInvitation(adminCtx(), "boss")
	assert.ErrorIs(t, err, employee.ErrInvitationAccepted)

	_, err = f.svc.ResendInvitation(adminCtx(), "old")
	assert.ErrorIs(t, err, employee.ErrEmployeeAlreadyInactive)
}

func TestListEmployees_Pagination(t *testing.T) {
	f := newFixture()

	list, err := f.svc.ListEmployees(adminCtx(), employee.EmployeeFilter{IncludeInactive: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.TotalCount)
	assert.Equal(t, 2, list.TotalPages)
	assert.Equal(t, "1-2 of 3", list.Showing)

	empty, err := f.svc.ListEmployees(adminCtx(), employee.EmployeeFilter{Search: "zzz"})
	require.NoError(t, err)
	assert.Equal(t, "0 of 0", empty.Showing)
}

func TestGetEmployee_EmployeeSeesOnlySelf(t *testing.T) {
	f := newFixture()
	ctx := jwt.WithCaller(context.Background(), jwt.AccessClaims{EmployeeID: "ann", CompanyID: "co-1", Role: employee.AccessRoleEmployee})

	resp, err := f.svc.GetEmployee(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, "Ann", resp.Name)

	_, err = f.svc.GetEmployee(ctx, "boss")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func boolPtr(b bool) *bool { return &b }
