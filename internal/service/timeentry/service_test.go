package timeentry

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/settings"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/timeentry"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	companyID  = "co-1"
	employeeID = "emp-1"
	adminID    = "admin-1"
)

// 10:00 UTC, before the default 12:00 half-sick cutoff.
var testNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func at(hour, minute int, day int) *time.Time {
	t := time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC)
	return &t
}

type memoryEntries struct {
	rows       map[string]timeentry.TimeEntry
	updateErr  error
	dayLookups int
}

func newMemoryEntries(entries ...timeentry.TimeEntry) *memoryEntries {
	m := &memoryEntries{rows: make(map[string]timeentry.TimeEntry)}
	for _, e := range entries {
		m.rows[e.ID] = e.Clone()
	}
	return m
}

func (m *memoryEntries) Create(_ context.Context, e timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	for _, existing := range m.rows {
		if existing.EmployeeID == e.EmployeeID && existing.Date == e.Date {
			return timeentry.TimeEntry{}, timeentry.ErrTimeEntryExists
		}
	}
	m.rows[e.ID] = e.Clone()
	return e.Clone(), nil
}

func (m *memoryEntries) Update(_ context.Context, e timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	if m.updateErr != nil {
		return timeentry.TimeEntry{}, m.updateErr
	}
	if _, ok := m.rows[e.ID]; !ok {
		return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
	}
	m.rows[e.ID] = e.Clone()
	return e.Clone(), nil
}

func (m *memoryEntries) GetByID(_ context.Context, id string, company string) (timeentry.TimeEntry, error) {
	e, ok := m.rows[id]
	if !ok || e.CompanyID != company {
		return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
	}
	return e.Clone(), nil
}

func (m *memoryEntries) GetByEmployeeAndDate(_ context.Context, emp, date, company string) (*timeentry.TimeEntry, error) {
	m.dayLookups++
	for _, e := range m.rows {
		if e.EmployeeID == emp && e.Date == date && e.CompanyID == company {
			out := e.Clone()
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memoryEntries) sorted(keep func(timeentry.TimeEntry) bool) []timeentry.TimeEntry {
	var out []timeentry.TimeEntry
	for _, e := range m.rows {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (m *memoryEntries) List(_ context.Context, f timeentry.Filter, company string) ([]timeentry.TimeEntry, int64, error) {
	out := m.sorted(func(e timeentry.TimeEntry) bool {
		return e.CompanyID == company &&
			(f.EmployeeID == nil || e.EmployeeID == *f.EmployeeID) &&
			(f.StartDate == nil || e.Date >= *f.StartDate) &&
			(f.EndDate == nil || e.Date <= *f.EndDate) &&
			(!f.PendingOnly || e.Pending != nil || e.PendingApproval)
	})
	return out, int64(len(out)), nil
}

func (m *memoryEntries) ListSince(_ context.Context, emp, since, company string) ([]timeentry.TimeEntry, error) {
	return m.sorted(func(e timeentry.TimeEntry) bool {
		return e.CompanyID == company && e.EmployeeID == emp && e.Date >= since
	}), nil
}

func (m *memoryEntries) ListInRange(_ context.Context, start, end, company string) ([]timeentry.TimeEntry, error) {
	return m.sorted(func(e timeentry.TimeEntry) bool {
		return e.CompanyID == company && e.Date >= start && e.Date <= end
	}), nil
}

func (m *memoryEntries) ListMissingClockOut(context.Context, string, string) ([]timeentry.TimeEntry, error) {
	return nil, nil
}

func (m *memoryEntries) CountVacationDays(_ context.Context, emp, start, end, company string) (timeentry.VacationCount, error) {
	var c timeentry.VacationCount
	for _, e := range m.rows {
		if e.CompanyID != company || e.EmployeeID != emp || e.Date < start || e.Date > end {
			continue
		}
		switch {
		case e.Current.IsVacationDay:
			c.Granted++
		case e.IsOpenVacationRequest():
			c.Pending++
		}
	}
	return c, nil
}

func (m *memoryEntries) Delete(_ context.Context, id, company string) error {
	if e, ok := m.rows[id]; !ok || e.CompanyID != company {
		return timeentry.ErrTimeEntryNotFound
	}
	delete(m.rows, id)
	return nil
}

type fakeEmployees struct {
	employee.EmployeeRepository
	byID map[string]employee.Employee
}

func (f fakeEmployees) GetByID(_ context.Context, id, company string) (employee.Employee, error) {
	e, ok := f.byID[id]
	if !ok || e.CompanyID != company {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f fakeEmployees) ListAll(_ context.Context, company string, _ bool) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.byID {
		if e.CompanyID == company {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeSettings struct {
	settings.SettingsRepository
	s *settings.AppSettings
}

func (f fakeSettings) Get(context.Context, string) (settings.AppSettings, error) {
	if f.s == nil {
		return settings.AppSettings{}, settings.ErrSettingsNotFound
	}
	return *f.s, nil
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
	return d.warnings
}

func (d *recordingDispatcher) Deliver(context.Context, notification.Event) (string, error) {
	return "", nil
}

type fixture struct {
	repo       *memoryEntries
	dispatcher *recordingDispatcher
	employees  fakeEmployees
	settings   fakeSettings
}

func newFixture(entries ...timeentry.TimeEntry) *fixture {
	annEmail := "ann@acme.test"
	return &fixture{
		repo:       newMemoryEntries(entries...),
		dispatcher: &recordingDispatcher{},
		employees: fakeEmployees{byID: map[string]employee.Employee{
			employeeID: {ID: employeeID, CompanyID: companyID, Name: "Ann", Email: &annEmail, VacationDaysTotal: 2, IsActive: true},
			adminID:    {ID: adminID, CompanyID: companyID, Name: "Boss", IsAdmin: true, IsActive: true},
		}},
	}
}

func (f *fixture) service(now time.Time) timeentry.TimeEntryService {
	return NewTimeEntryService(f.repo, f.employees, f.settings, noTx{}, f.dispatcher, timecalc.FixedClock{At: now})
}

func employeeCtx() context.Context {
	return jwt.WithCaller(context.Background(), jwt.AccessClaims{
		EmployeeID: employeeID, CompanyID: companyID, Role: employee.AccessRoleEmployee,
	})
}

func adminCtx() context.Context {
	return jwt.WithCaller(context.Background(), jwt.AccessClaims{
		EmployeeID: adminID, CompanyID: companyID, Role: employee.AccessRoleAdmin,
	})
}

func pastOpenEntry() timeentry.TimeEntry {
	return timeentry.TimeEntry{
		ID: "past-1", CompanyID: companyID, EmployeeID: employeeID, Date: "2024-01-10",
		Current: timeentry.Fields{ClockIn: at(9, 0, 10), Breaks: []timeentry.Break{}},
	}
}

func TestClockIn_CreatesEntryOnce(t *testing.T) {
	f := newFixture()
	svc := f.service(testNow)

	resp, err := svc.ClockIn(employeeCtx())
	require.NoError(t, err)
	require.NotNil(t, resp.Entry)
	assert.Equal(t, "2024-01-15", resp.Entry.Date)
	assert.Equal(t, timeentry.StatusWorking, resp.Entry.Status)
	assert.Len(t, f.repo.rows, 1)

	_, err = svc.ClockIn(employeeCtx())
	assert.ErrorIs(t, err, timeentry.ErrAlreadyClockedIn)
}

func TestClockIn_MissingClaims(t *testing.T) {
	_, err := newFixture().service(testNow).ClockIn(context.Background())
	assert.Error(t, err)
}

func TestClockIn_BlockedByPastEntry(t *testing.T) {
	f := newFixture(pastOpenEntry())
	svc := f.service(testNow)

	_, err := svc.ClockIn(employeeCtx())
	assert.ErrorIs(t, err, timeentry.ErrBlockedByPastEntry)

	today, err := svc.Today(employeeCtx())
	require.NoError(t, err)
	assert.Equal(t, timeentry.StatusIdle, today.Status)
	assert.Empty(t, today.AllowedActions)
	require.NotNil(t, today.BlockingEntry)
	assert.Equal(t, "past-1", today.BlockingEntry.ID)
	assert.Contains(t, today.BlockingEntry.Stats.Issues, timeentry.IssueMissingClockOut)
}

func TestToggleOffDay_BlockedByPastEntry(t *testing.T) {
	f := newFixture(pastOpenEntry())
	svc := f.service(testNow)

	for _, kind := range []timeentry.OffDayKind{timeentry.OffDaySick, timeentry.OffDayVacation} {
		_, err := svc.ToggleOffDay(employeeCtx(), timeentry.ToggleOffDayRequest{Type: kind, On: true})
		assert.ErrorIs(t, err, timeentry.ErrBlockedByPastEntry, kind)
	}

	entry, err := f.repo.GetByEmployeeAndDate(context.Background(), employeeID, "2024-01-15", companyID)
	require.NoError(t, err)
	assert.Nil(t, entry, "today must stay untouched")
}

func TestBreakFlow(t *testing.T) {
	f := newFixture()
	svc := f.service(testNow)

	_, err := svc.StartBreak(employeeCtx())
	assert.ErrorIs(t, err, timeentry.ErrNotClockedIn)

	_, err = svc.ClockIn(employeeCtx())
	require.NoError(t, err)

	resp, err := svc.StartBreak(employeeCtx())
	require.NoError(t, err)
	assert.Equal(t, timeentry.StatusBreak, resp.Entry.Status)

	_, err = svc.ClockOut(employeeCtx())
	assert.ErrorIs(t, err, timeentry.ErrActionNotAllowed)

	today, err := svc.Today(employeeCtx())
	require.NoError(t, err)
	assert.Equal(t, []timeentry.Action{timeentry.ActionEndBreak}, today.AllowedActions)

	resp, err = svc.EndBreak(employeeCtx())
	require.NoError(t, err)
	assert.Equal(t, timeentry.StatusWorking, resp.Entry.Status)
	require.Len(t, resp.Entry.Breaks, 1)
	assert.NotEmpty(t, resp.Entry.Breaks[0].ID)

	_, err = svc.EndBreak(employeeCtx())
	assert.ErrorIs(t, err, timeentry.ErrNoOpenBreak)

	resp, err = svc.ClockOut(employeeCtx())
	require.NoError(t, err)
	assert.Equal(t, timeentry.StatusDone, resp.Entry.Status)
}

func TestToggleHalfSick_RespectsCutoff(t *testing.T) {
	f := newFixture(timeentry.TimeEntry{
		ID: "today-1", CompanyID: companyID, EmployeeID: employeeID, Date: "2024-01-15",
		Current: timeentry.Fields{ClockIn: at(8, 0, 15), Breaks: []timeentry.Break{}},
	})
	req := timeentry.ToggleOffDayRequest{Type: timeentry.OffDayHalfSick, On: true}

	before := f.service(testNow)
	today, err := before.Today(employeeCtx())
	require.NoError(t, err)
	assert.Equal(t, []timeentry.Action{timeentry.ActionStartBreak, timeentry.ActionClockOut}, today.AllowedActions)

	_, err = before.ToggleOffDay(employeeCtx(), req)
	assert.ErrorIs(t, err, timeentry.ErrHalfSickBeforeCutoff)

	after := f.service(time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC))
	resp, err := after.ToggleOffDay(employeeCtx(), req)
	require.NoError(t, err)
	assert.Equal(t, timeentry.StatusHalfSick, resp.Entry.Status)
	require.NotNil(t, resp.Entry.ClockOut, "working day is clocked out")
	assert.Equal(t, 300, resp.Entry.Stats.TotalWorkedMinutes)
}

func TestToggleSick_WhileWorkingIsRejected(t *testing.T) {
	f := newFixture()
	svc := f.service(testNow)
	_, err := svc.ClockIn(employeeCtx())
	require.NoError(t, err)

	_, err = svc.ToggleOffDay(employeeCtx(), timeentry.ToggleOffDayRequest{Type: timeentry.OffDaySick, On: true})
	assert.ErrorIs(t, err, timeentry.ErrActionNotAllowed)
}

func TestToggleSick_OnThenOffDeletesEntry(t *testing.T) {
	f := newFixture()
	svc := f.service(testNow)

	resp, err := svc.ToggleOffDay(employeeCtx(), timeentry.ToggleOffDayRequest{Type: timeentry.OffDaySick, On: true})
	require.NoError(t, err)
	assert.Equal(t, timeentry.StatusSick, resp.Entry.Status)
	assert.Equal(t, []timeentry.IssueType{timeentry.IssueSickDay}, resp.Entry.Stats.Issues)

	resp, err = svc.ToggleOffDay(employeeCtx(), timeentry.ToggleOffDayRequest{Type: timeentry.OffDaySick, On: false})
	require.NoError(t, err)
	assert.True(t, resp.Deleted)
	assert.Empty(t, f.repo.rows)

	resp, err = svc.ToggleOffDay(employeeCtx(), timeentry.ToggleOffDayRequest{Type: timeentry.OffDaySick, On: false})
	require.NoError(t, err)
	assert.Nil(t, resp.Entry)
	assert.False(t, resp.Deleted)
}

func TestRequestVacation_Lifecycle(t *testing.T) {
	f := newFixture()
	svc := f.service(testNow)

	resp, err := svc.RequestVacation(employeeCtx(), timeentry.VacationRequest{Date: "2024-01-15", Reason: "family"})
	require.NoError(t, err)
	assert.True(t, resp.Entry.PendingApproval)
	assert.False(t, resp.Entry.IsVacationDay)

	require.Len(t, f.dispatcher.events, 1)
	assert.True(t, f.dispatcher.events[0].ToAdmins)
	assert.Equal(t, notification.TypeVacationRequested, f.dispatcher.events[0].Type())

	_, err = svc.ClockIn(employeeCtx())
	assert.ErrorIs(t, err, timeentry.ErrVacationRequestPending)

	_, err = svc.RequestVacation(employeeCtx(), timeentry.VacationRequest{Date: "2024-01-15"})
	assert.ErrorIs(t, err, timeentry.ErrVacationRequestPending)

	approved, err := svc.ApproveVacation(adminCtx(), timeentry.ResolveRequest{ID: resp.Entry.ID})
	require.NoError(t, err)
	assert.True(t, approved.Entry.IsVacationDay)
	assert.False(t, approved.Entry.PendingApproval)
	assert.Equal(t, timeentry.StatusVacation, approved.Entry.Status)

	last := f.dispatcher.events[len(f.dispatcher.events)-1]
	require.Len(t, last.To, 1)
	assert.Equal(t, "ann@acme.test", last.To[0].Email)
	assert.Equal(t, notification.TypeVacationResolved, last.Type())

	balance, err := svc.VacationBalance(employeeCtx())
	require.NoError(t, err)
	assert.Equal(t, timeentry.VacationBalanceResponse{Year: 2024, Allotment: 2, Used: 1, Pending: 0, Remaining: 1}, balance)
}

func TestRequestVacation_Rules(t *testing.T) {
	f := newFixture()
	svc := f.service(testNow)

	_, err := svc.RequestVacation(employeeCtx(), timeentry.VacationRequest{Date: "2024-01-14"})
	assert.ErrorIs(t, err, timeentry.ErrVacationInPast)

	_, err = svc.RequestVacation(employeeCtx(), timeentry.VacationRequest{Date: "2024-02-01"})
	require.NoError(t, err)
	_, err = svc.RequestVacation(employeeCtx(), timeentry.VacationRequest{Date: "2024-02-02"})
	require.NoError(t, err)

	_, err = svc.RequestVacation(employeeCtx(), timeentry.VacationRequest{Date: "2024-02-03"})
	assert.ErrorIs(t, err, timeentry.ErrVacationDaysExhausted)
}

func TestDenyVacation_DeletesPlaceholder(t *testing.T) {
	f := newFixture()
	svc := f.service(testNow)

	resp, err := svc.RequestVacation(employeeCtx(), timeentry.VacationRequest{Date: "2024-01-20", Reason: "trip"})
	require.NoError(t, err)

	denied, err := svc.DenyVacation(adminCtx(), timeentry.ResolveRequest{ID: resp.Entry.ID, Note: "busy week"})
	require.NoError(t, err)
	assert.True(t, denied.Deleted)
	assert.Empty(t, f.repo.rows)

	last := f.dispatcher.events[len(f.dispatcher.events)-1]
	payload := last.Payload.(notification.RequestResolved)
	assert.False(t, payload.Approved)
	assert.Equal(t, "busy week", payload.Note)

	_, err = svc.DenyVacation(adminCtx(), timeentry.ResolveRequest{ID: resp.Entry.ID})
	assert.ErrorIs(t, err, timeentry.ErrTimeEntryNotFound)
}

func TestChangeRequest_ApproveClearsBlock(t *testing.T) {
	f := newFixture(pastOpenEntry())
	svc := f.service(testNow)
	clockOut := "17:00"

	resp, err := svc.SubmitChangeRequest(employeeCtx(), timeentry.ChangeRequestRequest{
		Date: "2024-01-10", ClockOut: &clockOut, Reason: "forgot",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Entry.ChangeRequest)
	assert.Nil(t, resp.Entry.ClockOut, "settled values stay until approval")
	assert.Contains(t, resp.Entry.Stats.Issues, timeentry.IssueChangeRequested)

	require.Len(t, f.dispatcher.events, 1)
	submitted := f.dispatcher.events[0].Payload.(notification.ChangeRequestSubmitted)
	assert.Equal(t, "Clock in: 9:00 am, Clock out: 5:00 pm", submitted.Summary)
	assert.Equal(t, "Ann", submitted.EmployeeName)

	today, err := svc.Today(employeeCtx())
	require.NoError(t, err)
	assert.Nil(t, today.BlockingEntry)
	assert.Contains(t, today.AllowedActions, timeentry.ActionClockIn)

	_, err = svc.SubmitChangeRequest(employeeCtx(), timeentry.ChangeRequestRequest{Date: "2024-01-10", ClockOut: &clockOut})
	assert.ErrorIs(t, err, timeentry.ErrChangeRequestPending)

	detail, err := svc.Get(adminCtx(), "past-1")
	require.NoError(t, err)
	require.NotNil(t, detail.Reconciliation.ProposedStats)
	assert.Equal(t, 480, detail.Reconciliation.ProposedStats.TotalWorkedMinutes)
	assert.Equal(t, "Ann", detail.Entry.EmployeeName)

	approved, err := svc.ApproveChangeRequest(adminCtx(), timeentry.ResolveRequest{ID: "past-1", Note: "ok"})
	require.NoError(t, err)
	assert.Nil(t, approved.Entry.ChangeRequest)
	assert.Equal(t, 480, approved.Entry.Stats.TotalWorkedMinutes)
	assert.Equal(t, "8h0m", approved.Entry.WorkedLabel)

	_, err = svc.ApproveChangeRequest(adminCtx(), timeentry.ResolveRequest{ID: "past-1"})
	assert.ErrorIs(t, err, timeentry.ErrNoChangeRequest)
}

func TestChangeRequest_Rules(t *testing.T) {
	f := newFixture()
	svc := f.service(testNow)
	clockIn := "09:00"

	_, err := svc.SubmitChangeRequest(employeeCtx(), timeentry.ChangeRequestRequest{Date: "2024-01-16", ClockIn: &clockIn})
	assert.ErrorIs(t, err, timeentry.ErrFutureDate)

	_, err = svc.SubmitChangeRequest(employeeCtx(), timeentry.ChangeRequestRequest{Date: "2024-01-12"})
	assert.ErrorIs(t, err, timeentry.ErrEmptyChangeRequest)

	badOut := "08:00"
	_, err = svc.SubmitChangeRequest(employeeCtx(), timeentry.ChangeRequestRequest{Date: "2024-01-12", ClockIn: &clockIn, ClockOut: &badOut})
	assert.ErrorIs(t, err, timeentry.ErrClockOutBeforeClockIn)
	assert.Empty(t, f.repo.rows)
}

func TestDenyChangeRequest_DeletesPlaceholder(t *testing.T) {
	f := newFixture()
	svc := f.service(testNow)
	sick := true

	resp, err := svc.SubmitChangeRequest(employeeCtx(), timeentry.ChangeRequestRequest{Date: "2024-01-12", IsSickDay: &sick})
	require.NoError(t, err)
	assert.Equal(t, "Marked as sick", f.dispatcher.events[0].Payload.(notification.ChangeRequestSubmitted).Summary)

	denied, err := svc.DenyChangeRequest(adminCtx(), timeentry.ResolveRequest{ID: resp.Entry.ID})
	require.NoError(t, err)
	assert.True(t, denied.Deleted)
	assert.Empty(t, f.repo.rows)
}

func TestAdminSave_DiscardsChangeRequest(t *testing.T) {
	entry := pastOpenEntry()
	entry.Pending = &timeentry.ChangeRequest{
		Fields:      timeentry.Fields{ClockIn: at(9, 0, 10), ClockOut: at(17, 0, 10), Breaks: []timeentry.Break{}},
		SubmittedAt: testNow,
	}
	f := newFixture(entry)
	svc := f.service(testNow)

	resp, err := svc.AdminSave(adminCtx(), timeentry.AdminSaveRequest{
		ID: "past-1",
		EntryFieldsInput: timeentry.EntryFieldsInput{
			ClockIn: "09:00", ClockOut: "16:00",
			Breaks: []timeentry.BreakInput{{Start: "12:00", End: "12:30"}},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Entry.ChangeRequest)
	assert.Equal(t, 390, resp.Entry.Stats.TotalWorkedMinutes)

	require.Len(t, f.dispatcher.events, 1)
	payload := f.dispatcher.events[0].Payload.(notification.RequestResolved)
	assert.True(t, payload.Approved)
	assert.Equal(t, directEditNote, payload.Note)
}

func TestAdminCreate(t *testing.T) {
	f := newFixture()
	svc := f.service(testNow)
	req := timeentry.AdminCreateRequest{
		EmployeeID:       employeeID,
		Date:             "2024-01-11",
		EntryFieldsInput: timeentry.EntryFieldsInput{ClockIn: "09:00", ClockOut: "10:00", IsSickDay: true},
	}

	resp, err := svc.AdminCreate(adminCtx(), req)
	require.NoError(t, err)
	assert.True(t, resp.Entry.IsSickDay)
	assert.Nil(t, resp.Entry.ClockIn, "full sick days drop work data")

	_, err = svc.AdminCreate(adminCtx(), req)
	assert.ErrorIs(t, err, timeentry.ErrTimeEntryExists)

	req.EmployeeID = "ghost"
	_, err = svc.AdminCreate(adminCtx(), req)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestList_ResolvesNamesAndPaging(t *testing.T) {
	f := newFixture(pastOpenEntry())
	svc := f.service(testNow)

	list, err := svc.List(adminCtx(), timeentry.TimeEntryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
	assert.Equal(t, 31, list.Limit)
	assert.Equal(t, "1-1 of 1", list.Showing)
	require.Len(t, list.TimeEntries, 1)
	assert.Equal(t, "Ann", list.TimeEntries[0].EmployeeName)
}

func TestDelete(t *testing.T) {
	f := newFixture(pastOpenEntry())
	svc := f.service(testNow)

	require.NoError(t, svc.Delete(adminCtx(), "past-1"))
	assert.Empty(t, f.repo.rows)
	assert.ErrorIs(t, svc.Delete(adminCtx(), "past-1"), timeentry.ErrTimeEntryNotFound)
}

func TestMutation_ReturnsDispatchWarnings(t *testing.T) {
	f := newFixture()
	f.dispatcher.warnings = []string{"Vacation request was saved, but the notification email failed"}

	resp, err := f.service(testNow).RequestVacation(employeeCtx(), timeentry.VacationRequest{Date: "2024-01-20"})
	require.NoError(t, err)
	assert.Equal(t, f.dispatcher.warnings, resp.Warnings)
	assert.Len(t, f.repo.rows, 1, "the write stands even when delivery fails")
}

func TestApproveChangeRequest_UnknownEmployeeWarns(t *testing.T) {
	entry := pastOpenEntry()
	entry.EmployeeID = "emp-gone"
	entry.Pending = &timeentry.ChangeRequest{
		Fields:      timeentry.Fields{ClockIn: at(9, 0, 10), ClockOut: at(17, 0, 10), Breaks: []timeentry.Break{}},
		SubmittedAt: testNow,
	}
	f := newFixture(entry)

	resp, err := f.service(testNow).ApproveChangeRequest(adminCtx(), timeentry.ResolveRequest{ID: "past-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Change request decision was saved, but the notification email failed"}, resp.Warnings)
	assert.Empty(t, f.dispatcher.events)
	assert.Nil(t, f.repo.rows["past-1"].Pending, "the decision stands")
}

func TestCache_OnlyHoldsCommittedWrites(t *testing.T) {
	f := newFixture()
	svc := f.service(testNow)

	_, err := svc.ClockIn(employeeCtx())
	require.NoError(t, err)
	lookups := f.repo.dayLookups

	f.repo.updateErr = errors.New("connection reset")
	_, err = svc.ClockOut(employeeCtx())
	require.Error(t, err)

	today, err := svc.Today(employeeCtx())
	require.NoError(t, err)
	assert.Equal(t, timeentry.StatusWorking, today.Status)
	assert.Equal(t, lookups, f.repo.dayLookups, "today is served from the cache")
}

func TestToday_SettingsTimezone(t *testing.T) {
	f := newFixture()
	f.settings = fakeSettings{s: &settings.AppSettings{CompanyID: companyID, Timezone: "America/New_York", HalfSickCutoff: "09:00"}}

	// 03:00 UTC is still the previous evening in New York.
	today, err := f.service(time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC)).Today(employeeCtx())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-14", today.Date)
	assert.Equal(t, "09:00", today.HalfSickCutoff)
	assert.Contains(t, today.AllowedActions, timeentry.ActionToggleHalfSick)
}
