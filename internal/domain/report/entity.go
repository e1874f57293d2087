package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is an inclusive range of YYYY-MM-DD keys.
type Period struct {
	Start string
	End   string
}

// Contains compares date keys as strings; the fixed-width layout makes that exact.
func (p Period) Contains(date string) bool {
	return date >= p.Start && date <= p.End
}

func (p Period) Label() string {
	return p.Start + " to " + p.End
}

// PeriodSummary is one employee's payroll totals for a period.
type PeriodSummary struct {
	EmployeeID   string
	Name         string
	Role         string
	IsActive     bool
	HourlyRate   *decimal.Decimal
	TotalMinutes int
	DaysWorked   int
	SickDays     float64 // half-sick days count 0.5
	VacationDays int
	TotalPay     decimal.Decimal
	HasIssues    bool
}

// HasActivity reports whether anything was recorded in the period.
func (s PeriodSummary) HasActivity() bool {
	return s.TotalMinutes > 0 || s.SickDays > 0 || s.VacationDays > 0
}

type PeriodReport struct {
	Period       Period
	CompanyName  string
	GeneratedAt  time.Time
	Summaries    []PeriodSummary
	TotalMinutes int
	TotalPay     decimal.Decimal
}

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

func (f Format) IsValid() bool {
	return f == FormatXLSX || f == FormatPDF
}

// ExportFile is a rendered report ready to be downloaded or attached.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
