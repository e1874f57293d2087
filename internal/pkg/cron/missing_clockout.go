package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/settings"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/timeentry"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
)

const MissingClockOutJobName = "missing_clock_out_reminder"

// MissingClockOutJob reminds employees about past entries they never clocked out of.
// Each (entry, day) pair is alerted at most once.
type MissingClockOutJob struct {
	settingsRepo  settings.SettingsRepository
	timeEntryRepo timeentry.TimeEntryRepository
	alertRepo     timeentry.AlertRepository
	employeeRepo  employee.EmployeeRepository
	dispatcher    notification.Dispatcher
	clock         timecalc.Clock
}

func NewMissingClockOutJob(
	settingsRepo settings.SettingsRepository,
	timeEntryRepo timeentry.TimeEntryRepository,
	alertRepo timeentry.AlertRepository,
	employeeRepo employee.EmployeeRepository,
	dispatcher notification.Dispatcher,
	clock timecalc.Clock,
) *MissingClockOutJob {
	return &MissingClockOutJob{
		settingsRepo:  settingsRepo,
		timeEntryRepo: timeEntryRepo,
		alertRepo:     alertRepo,
		employeeRepo:  employeeRepo,
		dispatcher:    dispatcher,
		clock:         clock,
	}
}

func (j *MissingClockOutJob) Register(scheduler *Scheduler, interval, timeout time.Duration) {
	scheduler.AddJob(Job{
		Name:     MissingClockOutJobName,
		Interval: interval,
		Timeout:  timeout,
		Fn:       func(ctx context.Context) error { _, err := j.Run(ctx); return err },
	})
}

// Run scans every tenant with alerts enabled and returns how many reminders were queued.
func (j *MissingClockOutJob) Run(ctx context.Context) (int, error) {
	tenants, err := j.settingsRepo.ListAlertsEnabled(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tenants with alerts: %w", err)
	}

	now := j.clock.Now()
	sent := 0
	var errs []error
	for _, s := range tenants {
		n, err := j.runTenant(ctx, s, now)
		sent += n
		if err != nil {
			errs = append(errs, fmt.Errorf("company %s: %w", s.CompanyID, err))
		}
	}

	slog.Info("Cron: missing clock-out reminders processed", "tenants", len(tenants), "sent", sent)
	return sent, errors.Join(errs...)
}

func (j *MissingClockOutJob) runTenant(ctx context.Context, s settings.AppSettings, now time.Time) (int, error) {
	loc := s.Location()
	today := timecalc.LocalDateKey(now, loc)

	entries, err := j.timeEntryRepo.ListMissingClockOut(ctx, today, s.CompanyID)
	if err != nil {
		return 0, fmt.Errorf("failed to list open entries: %w", err)
	}

	sent := 0
	for _, entry := range entries {
		inserted, err := j.alertRepo.MarkMissingClockOutAlert(ctx, entry.ID, today)
		if err != nil {
			return sent, fmt.Errorf("failed to mark alert for entry %s: %w", entry.ID, err)
		}
		if !inserted {
			continue
		}

		emp, err := j.employeeRepo.GetByID(ctx, entry.EmployeeID, s.CompanyID)
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Warn("Cron: missing clock-out entry has no employee", "entry_id", entry.ID, "employee_id", entry.EmployeeID)
			continue
		}
		if err != nil {
			return sent, fmt.Errorf("failed to load employee %s: %w", entry.EmployeeID, err)
		}

		to := notification.Recipient{EmployeeID: emp.ID, Name: emp.Name}
		if emp.Email != nil {
			to.Email = *emp.Email
		}
		warnings := j.dispatcher.Dispatch(ctx, []notification.Event{{
			CompanyID: s.CompanyID,
			To:        []notification.Recipient{to},
			Payload: notification.MissingClockOut{
				EntryID:      entry.ID,
				EmployeeName: emp.Name,
				Date:         entry.Date,
				ClockIn:      timecalc.FormatClockTime(entry.Current.ClockIn, loc),
			},
		}})
		if len(warnings) > 0 {
			slog.Warn("Cron: missing clock-out reminder not delivered", "entry_id", entry.ID, "warnings", warnings)
			continue
		}
		sent++
	}
	return sent, nil
}
