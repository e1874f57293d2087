package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const maxPeriodDays = 366

type PeriodRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r *PeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if okStart && okEnd {
		if end.Before(start) {
			errs.Add("end_date", ErrInvalidDateRange.Error())
		} else if end.Sub(start) > maxPeriodDays*24*time.Hour {
			errs.Add("end_date", ErrPeriodTooLong.Error())
		}
	}

	return errs.OrNil()
}

func (r PeriodRequest) Period() Period {
	return Period{Start: r.StartDate, End: r.EndDate}
}

type ExportRequest struct {
	PeriodRequest
	Format Format `json:"format"`
}

func (r *ExportRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := r.PeriodRequest.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	r.Format = Format(strings.ToLower(string(r.Format)))
	if r.Format == "" {
		r.Format = FormatXLSX
	}
	if !r.Format.IsValid() {
		errs.Add("format", ErrUnsupportedFormat.Error())
	}
	return errs.OrNil()
}

type SendRequest struct {
	PeriodRequest
	// Recipient overrides the bookkeeper email from settings.
	Recipient *string `json:"recipient,omitempty"`
}

func (r *SendRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := r.PeriodRequest.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	if r.Recipient != nil {
		to := strings.ToLower(strings.TrimSpace(*r.Recipient))
		r.Recipient = &to
		if to == "" {
			r.Recipient = nil
		} else if !validator.IsValidEmail(to) {
			errs.Add("recipient", "recipient format is invalid")
		}
	}
	return errs.OrNil()
}

type SendResponse struct {
	MessageID string `json:"message_id"`
	Recipient string `json:"recipient"`
}

type PeriodSummaryResponse struct {
	EmployeeID   string  `json:"employee_id"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	IsActive     bool    `json:"is_active"`
	HourlyRate   *string `json:"hourly_rate,omitempty"`
	TotalMinutes int     `json:"total_minutes"`
	HoursLabel   string  `json:"hours_label"`
	DaysWorked   int     `json:"days_worked"`
	SickDays     float64 `json:"sick_days"`
	VacationDays int     `json:"vacation_days"`
	TotalPay     string  `json:"total_pay"`
	HasIssues    bool    `json:"has_issues"`
}

type PeriodReportResponse struct {
	StartDate    string                  `json:"start_date"`
	EndDate      string                  `json:"end_date"`
	CompanyName  string                  `json:"company_name"`
	GeneratedAt  string                  `json:"generated_at"`
	TotalMinutes int                     `json:"total_minutes"`
	HoursLabel   string                  `json:"hours_label"`
	TotalPay     string                  `json:"total_pay"`
	Summaries    []PeriodSummaryResponse `json:"summaries"`
}

func NewPeriodReportResponse(r PeriodReport) PeriodReportResponse {
	resp := PeriodReportResponse{
		StartDate:    r.Period.Start,
		EndDate:      r.Period.End,
		CompanyName:  r.CompanyName,
		GeneratedAt:  r.GeneratedAt.Format(time.RFC3339),
		TotalMinutes: r.TotalMinutes,
		HoursLabel:   timecalc.FormatDuration(r.TotalMinutes),
		TotalPay:     FormatMoney(r.TotalPay),
		Summaries:    make([]PeriodSummaryResponse, 0, len(r.Summaries)),
	}
	for _, s := range r.Summaries {
		row := PeriodSummaryResponse{
			EmployeeID:   s.EmployeeID,
			Name:         s.Name,
			Role:         s.Role,
			IsActive:     s.IsActive,
			TotalMinutes: s.TotalMinutes,
			HoursLabel:   timecalc.FormatDuration(s.TotalMinutes),
			DaysWorked:   s.DaysWorked,
			SickDays:     s.SickDays,
			VacationDays: s.VacationDays,
			TotalPay:     FormatMoney(s.TotalPay),
			HasIssues:    s.HasIssues,
		}
		if s.HourlyRate != nil {
			rate := FormatMoney(*s.HourlyRate)
			row.HourlyRate = &rate
		}
		resp.Summaries = append(resp.Summaries, row)
	}
	return resp
}

// FormatMoney renders an amount with two decimals, e.g. "1234.50".
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatDays renders a day count that may contain halves, e.g. "1.5" or "2".
func FormatDays(days float64) string {
	if days == float64(int(days)) {
		return fmt.Sprintf("%d", int(days))
	}
	return fmt.Sprintf("%.1f", days)
}
