package report

import (
	"sort"
	"strings"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/timeentry"
	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// Aggregate folds entries into per-employee payroll summaries for period.
// Admins and bookkeepers are excluded. Archived employees appear only when they
// have activity in the period. Results are ordered by name.
func Aggregate(employees []employee.Employee, entries []timeentry.TimeEntry, period Period, now time.Time, loc *time.Location) []PeriodSummary {
	byEmployee := make(map[string][]timeentry.TimeEntry)
	for _, e := range entries {
		if period.Contains(e.Date) {
			byEmployee[e.EmployeeID] = append(byEmployee[e.EmployeeID], e)
		}
	}

	summaries := make([]PeriodSummary, 0, len(employees))
	for _, emp := range employees {
		if !emp.IsTrackedWorker() {
			continue
		}
		s := summarize(emp, byEmployee[emp.ID], now, loc)
		if emp.IsActive || s.HasActivity() {
			summaries = append(summaries, s)
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := strings.ToLower(summaries[i].Name), strings.ToLower(summaries[j].Name)
		if a == b {
			return summaries[i].EmployeeID < summaries[j].EmployeeID
		}
		return a < b
	})
	return summaries
}

func summarize(emp employee.Employee, entries []timeentry.TimeEntry, now time.Time, loc *time.Location) PeriodSummary {
	s := PeriodSummary{
		EmployeeID: emp.ID,
		Name:       emp.Name,
		Role:       emp.Role,
		IsActive:   emp.IsActive,
		HourlyRate: emp.HourlyRate,
		TotalPay:   decimal.Zero,
	}

	for i := range entries {
		entry := &entries[i]
		stats := timeentry.ComputeStats(entry, now, loc)
		if len(stats.Issues) > 0 {
			s.HasIssues = true
		}

		f := entry.Current
		switch {
		case f.IsSickDay:
			s.SickDays++
			continue
		case f.IsVacationDay:
			s.VacationDays++
			continue
		case f.IsHalfSickDay:
			s.SickDays += 0.5
		}

		s.TotalMinutes += stats.TotalWorkedMinutes
		if stats.TotalWorkedMinutes > 0 {
			s.DaysWorked++
		}
	}

	s.TotalPay = Pay(s.TotalMinutes, emp.HourlyRate)
	return s
}

// Pay is (minutes / 60) * rate rounded to cents, or zero without a rate.
func Pay(minutes int, rate *decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(minutes)).Mul(*rate).Div(minutesPerHour).Round(2)
}

// NewPeriodReport aggregates and totals a report.
func NewPeriodReport(companyName string, employees []employee.Employee, entries []timeentry.TimeEntry, period Period, now time.Time, loc *time.Location) PeriodReport {
	r := PeriodReport{
		Period:      period,
		CompanyName: companyName,
		GeneratedAt: now,
		Summaries:   Aggregate(employees, entries, period, now, loc),
		TotalPay:    decimal.Zero,
	}
	for _, s := range r.Summaries {
		r.TotalMinutes += s.TotalMinutes
		r.TotalPay = r.TotalPay.Add(s.TotalPay)
	}
	return r
}
