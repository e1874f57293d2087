// Package export renders period reports as spreadsheet or PDF files.
package export

import (
	"fmt"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/report"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

var columns = []string{"Employee", "Role", "Status", "Hourly rate", "Hours", "Minutes", "Days worked", "Sick days", "Vacation days", "Pay", "Issues"}

type renderer struct{}

func NewRenderer() report.Renderer {
	return renderer{}
}

func (renderer) Render(r report.PeriodReport, format report.Format) (report.ExportFile, error) {
	switch format {
	case report.FormatXLSX:
		data, err := XLSX(r)
		if err != nil {
			return report.ExportFile{}, err
		}
		return report.ExportFile{Filename: Filename(r.Period, format), ContentType: ContentTypeXLSX, Data: data}, nil
	case report.FormatPDF:
		data, err := PDF(r)
		if err != nil {
			return report.ExportFile{}, err
		}
		return report.ExportFile{Filename: Filename(r.Period, format), ContentType: ContentTypePDF, Data: data}, nil
	default:
		return report.ExportFile{}, report.ErrUnsupportedFormat
	}
}

// Filename is e.g. "payroll_2024-01-01_2024-01-15.xlsx".
func Filename(p report.Period, format report.Format) string {
	return fmt.Sprintf("payroll_%s_%s.%s", p.Start, p.End, format)
}

func row(s report.PeriodSummary) []string {
	status := "Active"
	if !s.IsActive {
		status = "Archived"
	}
	rate := ""
	if s.HourlyRate != nil {
		rate = report.FormatMoney(*s.HourlyRate)
	}
	issues := ""
	if s.HasIssues {
		issues = "Yes"
	}
	return []string{
		s.Name,
		s.Role,
		status,
		rate,
		timecalc.FormatDuration(s.TotalMinutes),
		fmt.Sprintf("%d", s.TotalMinutes),
		fmt.Sprintf("%d", s.DaysWorked),
		report.FormatDays(s.SickDays),
		fmt.Sprintf("%d", s.VacationDays),
		report.FormatMoney(s.TotalPay),
		issues,
	}
}
