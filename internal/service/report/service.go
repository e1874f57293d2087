package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/report"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/settings"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/timeentry"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
)

type ReportServiceImpl struct {
	timeEntryRepo timeentry.TimeEntryRepository
	employeeRepo  employee.EmployeeRepository
	settingsRepo  settings.SettingsRepository
	renderer      report.Renderer
	dispatcher    notification.Dispatcher
	clock         timecalc.Clock
}

func NewReportService(
	timeEntryRepo timeentry.TimeEntryRepository,
	employeeRepo employee.EmployeeRepository,
	settingsRepo settings.SettingsRepository,
	renderer report.Renderer,
	dispatcher notification.Dispatcher,
	clock timecalc.Clock,
) report.ReportService {
	return &ReportServiceImpl{
		timeEntryRepo: timeEntryRepo,
		employeeRepo:  employeeRepo,
		settingsRepo:  settingsRepo,
		renderer:      renderer,
		dispatcher:    dispatcher,
		clock:         clock,
	}
}

// build loads everything the period needs and aggregates it.
func (s *ReportServiceImpl) build(ctx context.Context, period report.Period) (report.PeriodReport, settings.AppSettings, error) {
	claims, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return report.PeriodReport{}, settings.AppSettings{}, err
	}

	appSettings, err := s.settingsRepo.Get(ctx, claims.CompanyID)
	if err != nil {
		if !errors.Is(err, settings.ErrSettingsNotFound) {
			return report.PeriodReport{}, settings.AppSettings{}, fmt.Errorf("failed to load settings: %w", err)
		}
		appSettings = settings.AppSettings{CompanyID: claims.CompanyID}
	}

	employees, err := s.employeeRepo.ListAll(ctx, claims.CompanyID, true)
	if err != nil {
		return report.PeriodReport{}, settings.AppSettings{}, fmt.Errorf("failed to list employees: %w", err)
	}

	entries, err := s.timeEntryRepo.ListInRange(ctx, period.Start, period.End, claims.CompanyID)
	if err != nil {
		return report.PeriodReport{}, settings.AppSettings{}, fmt.Errorf("failed to list time entries: %w", err)
	}

	r := report.NewPeriodReport(appSettings.CompanyName, employees, entries, period, s.clock.Now().UTC(), appSettings.Location())
	return r, appSettings, nil
}

// Generate implements report.ReportService.
func (s *ReportServiceImpl) Generate(ctx context.Context, req report.PeriodRequest) (report.PeriodReportResponse, error) {
	if err := req.Validate(); err != nil {
		return report.PeriodReportResponse{}, err
	}

	r, _, err := s.build(ctx, req.Period())
	if err != nil {
		return report.PeriodReportResponse{}, err
	}
	return report.NewPeriodReportResponse(r), nil
}

// Export implements report.ReportService.
func (s *ReportServiceImpl) Export(ctx context.Context, req report.ExportRequest) (report.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return report.ExportFile{}, err
	}

	r, _, err := s.build(ctx, req.Period())
	if err != nil {
		return report.ExportFile{}, err
	}

	file, err := s.renderer.Render(r, req.Format)
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to render report: %w", err)
	}
	return file, nil
}

// Send implements report.ReportService.
func (s *ReportServiceImpl) Send(ctx context.Context, req report.SendRequest) (report.SendResponse, error) {
	if err := req.Validate(); err != nil {
		return report.SendResponse{}, err
	}

	r, appSettings, err := s.build(ctx, req.Period())
	if err != nil {
		return report.SendResponse{}, err
	}

	var recipient string
	switch {
	case req.Recipient != nil:
		recipient = *req.Recipient
	case appSettings.BookkeeperEmail != nil && *appSettings.BookkeeperEmail != "":
		recipient = *appSettings.BookkeeperEmail
	default:
		return report.SendResponse{}, report.ErrNoRecipient
	}

	file, err := s.renderer.Render(r, report.FormatXLSX)
	if err != nil {
		return report.SendResponse{}, fmt.Errorf("failed to render report: %w", err)
	}

	messageID, err := s.dispatcher.Deliver(ctx, notification.Event{
		CompanyID: appSettings.CompanyID,
		To:        []notification.Recipient{{Email: recipient}},
		Payload:   periodReportPayload(r, file),
	})
	if err != nil {
		return report.SendResponse{}, err
	}

	return report.SendResponse{MessageID: messageID, Recipient: recipient}, nil
}

func periodReportPayload(r report.PeriodReport, file report.ExportFile) notification.PeriodReport {
	rows := make([]notification.PeriodReportRow, 0, len(r.Summaries))
	for _, s := range r.Summaries {
		rows = append(rows, notification.PeriodReportRow{
			Name:         s.Name,
			Role:         s.Role,
			Hours:        timecalc.FormatDuration(s.TotalMinutes),
			DaysWorked:   s.DaysWorked,
			SickDays:     report.FormatDays(s.SickDays),
			VacationDays: s.VacationDays,
			TotalPay:     report.FormatMoney(s.TotalPay),
		})
	}

	return notification.PeriodReport{
		CompanyName: r.CompanyName,
		PeriodLabel: r.Period.Label(),
		Rows:        rows,
		TotalHours:  timecalc.FormatDuration(r.TotalMinutes),
		TotalPay:    report.FormatMoney(r.TotalPay),
		Attachment: &notification.Attachment{
			Filename:    file.Filename,
			ContentType: file.ContentType,
			Data:        file.Data,
		},
	}
}
