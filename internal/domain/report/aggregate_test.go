package report

import (
	"testing"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/timeentry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func clock(day, hour, minute int) *time.Time {
	t := time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC)
	return &t
}

func rate(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func worked(id, employeeID string, day int, inH, outH int) timeentry.TimeEntry {
	return timeentry.TimeEntry{
		ID:         id,
		EmployeeID: employeeID,
		Date:       time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
		Current:    timeentry.Fields{ClockIn: clock(day, inH, 0), ClockOut: clock(day, outH, 0)},
	}
}

func TestAggregate(t *testing.T) {
	employees := []employee.Employee{
		{ID: "e1", Name: "Zoe", Role: "Barista", HourlyRate: rate("20"), IsActive: true},
		{ID: "e2", Name: "adam", Role: "Cook", IsActive: true},
		{ID: "admin", Name: "Boss", IsAdmin: true, IsActive: true, HourlyRate: rate("99")},
		{ID: "bk", Name: "Books", IsBookkeeper: true, IsActive: true},
		{ID: "archived-idle", Name: "Gone", IsActive: false},
		{ID: "archived-busy", Name: "Left Recently", IsActive: false, HourlyRate: rate("10")},
	}
	entries := []timeentry.TimeEntry{
		worked("1", "e1", 2, 9, 17),
		worked("2", "e1", 3, 9, 13),
		{ID: "3", EmployeeID: "e1", Date: "2024-01-04", Current: timeentry.Fields{IsSickDay: true}},
		{ID: "4", EmployeeID: "e1", Date: "2024-01-05", Current: timeentry.Fields{IsVacationDay: true}},
		{ID: "5", EmployeeID: "e1", Date: "2024-01-08", Current: timeentry.Fields{
			IsHalfSickDay: true, ClockIn: clock(8, 9, 0), ClockOut: clock(8, 13, 0),
		}},
		worked("6", "admin", 2, 8, 18),
		worked("7", "archived-busy", 2, 9, 12),
		worked("out-of-range", "e1", 20, 9, 17),
		{ID: "open", EmployeeID: "e2", Date: "2024-01-09", Current: timeentry.Fields{ClockIn: clock(9, 9, 0)}},
	}
	period := Period{Start: "2024-01-01", End: "2024-01-15"}

	summaries := Aggregate(employees, entries, period, now, time.UTC)
	require.Len(t, summaries, 3)

	assert.Equal(t, "e2", summaries[0].EmployeeID, "names sort case-insensitively")
	assert.Equal(t, "archived-busy", summaries[1].EmployeeID)
	assert.Equal(t, "e1", summaries[2].EmployeeID)

	zoe := summaries[2]
	assert.Equal(t, (8+4+4)*60, zoe.TotalMinutes)
	assert.Equal(t, 3, zoe.DaysWorked)
	assert.Equal(t, 1.5, zoe.SickDays)
	assert.Equal(t, 1, zoe.VacationDays)
	assert.True(t, zoe.TotalPay.Equal(decimal.NewFromInt(320)))
	assert.True(t, zoe.HasIssues, "sick, vacation and an unbroken 8h shift all carry issue codes")

	adam := summaries[0]
	assert.True(t, adam.HasIssues, "open shift from a past day is flagged")
	assert.True(t, adam.TotalPay.IsZero(), "no hourly rate means no pay")

	archived := summaries[1]
	assert.False(t, archived.IsActive)
	assert.Equal(t, 180, archived.TotalMinutes)
	assert.True(t, archived.TotalPay.Equal(decimal.NewFromInt(30)))

	for _, s := range summaries {
		assert.NotEqual(t, "admin", s.EmployeeID)
		assert.NotEqual(t, "bk", s.EmployeeID)
		assert.NotEqual(t, "archived-idle", s.EmployeeID)
	}
}

func TestAggregate_HalfSickScenario(t *testing.T) {
	employees := []employee.Employee{{ID: "e1", Name: "Sam", IsActive: true}}
	entries := []timeentry.TimeEntry{{
		EmployeeID: "e1",
		Date:       "2024-01-10",
		Current:    timeentry.Fields{IsHalfSickDay: true, ClockIn: clock(10, 9, 0), ClockOut: clock(10, 13, 0)},
	}}

	summaries := Aggregate(employees, entries, Period{Start: "2024-01-10", End: "2024-01-10"}, now, time.UTC)
	require.Len(t, summaries, 1)
	assert.Equal(t, 240, summaries[0].TotalMinutes)
	assert.Equal(t, 0.5, summaries[0].SickDays)
	assert.Equal(t, 1, summaries[0].DaysWorked)
}

func TestAggregate_AdminWithHoursIsExcluded(t *testing.T) {
	employees := []employee.Employee{{ID: "a", Name: "Owner", IsAdmin: true, IsActive: true}}
	entries := []timeentry.TimeEntry{worked("1", "a", 2, 9, 17)}
	assert.Empty(t, Aggregate(employees, entries, Period{Start: "2024-01-01", End: "2024-01-31"}, now, time.UTC))
}

func TestPay(t *testing.T) {
	assert.True(t, Pay(90, rate("15.50")).Equal(decimal.RequireFromString("23.25")))
	assert.True(t, Pay(100, rate("10")).Equal(decimal.RequireFromString("16.67")))
	assert.True(t, Pay(480, nil).IsZero())
}

func TestNewPeriodReport_Totals(t *testing.T) {
	employees := []employee.Employee{
		{ID: "e1", Name: "A", IsActive: true, HourlyRate: rate("10")},
		{ID: "e2", Name: "B", IsActive: true, HourlyRate: rate("20")},
	}
	entries := []timeentry.TimeEntry{worked("1", "e1", 2, 9, 11), worked("2", "e2", 2, 9, 10)}

	r := NewPeriodReport("Acme", employees, entries, Period{Start: "2024-01-01", End: "2024-01-31"}, now, time.UTC)
	assert.Equal(t, 180, r.TotalMinutes)
	assert.True(t, r.TotalPay.Equal(decimal.NewFromInt(40)))

	resp := NewPeriodReportResponse(r)
	assert.Equal(t, "3h0m", resp.HoursLabel)
	assert.Equal(t, "40.00", resp.TotalPay)
	require.Len(t, resp.Summaries, 2)
	assert.Equal(t, "10.00", *resp.Summaries[0].HourlyRate)
}

func TestPeriodRequest_Validate(t *testing.T) {
	ok := PeriodRequest{StartDate: "2024-01-01", EndDate: "2024-01-14"}
	assert.NoError(t, ok.Validate())

	reversed := PeriodRequest{StartDate: "2024-01-14", EndDate: "2024-01-01"}
	assert.Error(t, reversed.Validate())

	tooLong := PeriodRequest{StartDate: "2023-01-01", EndDate: "2024-06-01"}
	assert.Error(t, tooLong.Validate())

	export := ExportRequest{PeriodRequest: ok, Format: "PDF"}
	require.NoError(t, export.Validate())
	assert.Equal(t, FormatPDF, export.Format)

	bad := ExportRequest{PeriodRequest: ok, Format: "csv"}
	assert.Error(t, bad.Validate())
}

func TestFormatDays(t *testing.T) {
	assert.Equal(t, "2", FormatDays(2))
	assert.Equal(t, "1.5", FormatDays(1.5))
}
