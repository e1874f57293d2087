package timeentry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/settings"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/timeentry"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/database"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
)

// historyWindowDays bounds how far back the blocking-entry check looks.
const historyWindowDays = 180

type TimeEntryServiceImpl struct {
	repo         timeentry.TimeEntryRepository
	employeeRepo employee.EmployeeRepository
	settingsRepo settings.SettingsRepository
	tx           database.Transactor
	dispatcher   notification.Dispatcher
	clock        timecalc.Clock
	cache        *entryCache
}

// session is the resolved caller for one request.
type session struct {
	claims   jwt.AccessClaims
	settings settings.AppSettings
	loc      *time.Location
	now      time.Time
	today    string
}

func (s *TimeEntryServiceImpl) begin(ctx context.Context) (session, error) {
	claims, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return session{}, err
	}

	appSettings, err := s.settingsFor(ctx, claims.CompanyID)
	if err != nil {
		return session{}, err
	}

	now := s.clock.Now().UTC()
	loc := appSettings.Location()
	return session{
		claims:   claims,
		settings: appSettings,
		loc:      loc,
		now:      now,
		today:    timecalc.LocalDateKey(now, loc),
	}, nil
}

func (s *TimeEntryServiceImpl) settingsFor(ctx context.Context, companyID string) (settings.AppSettings, error) {
	appSettings, err := s.settingsRepo.Get(ctx, companyID)
	if err != nil {
		if errors.Is(err, settings.ErrSettingsNotFound) {
			return settings.AppSettings{CompanyID: companyID}, nil
		}
		return settings.AppSettings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return appSettings, nil
}

// findDay returns nil when the employee has no entry on date.
func (s *TimeEntryServiceImpl) findDay(ctx context.Context, companyID, employeeID, date string) (*timeentry.TimeEntry, error) {
	if cached, ok := s.cache.getDay(companyID, employeeID, date); ok {
		return &cached, nil
	}

	entry, err := s.repo.GetByEmployeeAndDate(ctx, employeeID, date, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get time entry for %s: %w", date, err)
	}
	if entry != nil {
		s.cache.put(*entry)
	}
	return entry, nil
}

func (s *TimeEntryServiceImpl) getEntry(ctx context.Context, id, companyID string) (timeentry.TimeEntry, error) {
	if cached, ok := s.cache.get(id, companyID); ok {
		return cached, nil
	}

	entry, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, timeentry.ErrTimeEntryNotFound) {
			return timeentry.TimeEntry{}, err
		}
		return timeentry.TimeEntry{}, fmt.Errorf("failed to get time entry: %w", err)
	}
	s.cache.put(entry)
	return entry, nil
}

// blockingEntry finds the oldest past day that still waits for a clock-out.
func (s *TimeEntryServiceImpl) blockingEntry(ctx context.Context, sess session) (*timeentry.TimeEntry, error) {
	since := timecalc.LocalDateKey(sess.now.AddDate(0, 0, -historyWindowDays), sess.loc)
	history, err := s.repo.ListSince(ctx, sess.claims.EmployeeID, since, sess.claims.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load time entry history: %w", err)
	}
	return timeentry.FindBlockingEntry(history, sess.today), nil
}

// create and update write through: the cache only sees committed rows.
func (s *TimeEntryServiceImpl) create(ctx context.Context, entry timeentry.TimeEntry, now time.Time) (timeentry.TimeEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = now
	entry.UpdatedAt = now
	assignBreakIDs(&entry)

	var saved timeentry.TimeEntry
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		saved, err = s.repo.Create(ctx, entry)
		return err
	})
	if err != nil {
		if errors.Is(err, timeentry.ErrTimeEntryExists) {
			return timeentry.TimeEntry{}, err
		}
		return timeentry.TimeEntry{}, fmt.Errorf("failed to create time entry: %w", err)
	}

	s.cache.put(saved)
	return saved, nil
}

func (s *TimeEntryServiceImpl) update(ctx context.Context, entry timeentry.TimeEntry, now time.Time) (timeentry.TimeEntry, error) {
	entry.UpdatedAt = now
	assignBreakIDs(&entry)

	var saved timeentry.TimeEntry
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		saved, err = s.repo.Update(ctx, entry)
		return err
	})
	if err != nil {
		if errors.Is(err, timeentry.ErrTimeEntryNotFound) {
			return timeentry.TimeEntry{}, err
		}
		return timeentry.TimeEntry{}, fmt.Errorf("failed to update time entry: %w", err)
	}

	s.cache.put(saved)
	return saved, nil
}

func (s *TimeEntryServiceImpl) remove(ctx context.Context, entry timeentry.TimeEntry) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, entry.ID, entry.CompanyID)
	})
	if err != nil {
		if errors.Is(err, timeentry.ErrTimeEntryNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete time entry: %w", err)
	}

	s.cache.remove(entry)
	return nil
}

// save creates or updates depending on whether the entry already exists,
// and deletes it instead when nothing worth keeping is left.
func (s *TimeEntryServiceImpl) save(ctx context.Context, entry timeentry.TimeEntry, exists bool, now time.Time) (*timeentry.TimeEntry, error) {
	if entry.IsEmpty() {
		if exists {
			if err := s.remove(ctx, entry); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	var (
		saved timeentry.TimeEntry
		err   error
	)
	if exists {
		saved, err = s.update(ctx, entry, now)
	} else {
		saved, err = s.create(ctx, entry, now)
	}
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func assignBreakIDs(entry *timeentry.TimeEntry) {
	for i := range entry.Current.Breaks {
		if entry.Current.Breaks[i].ID == "" {
			entry.Current.Breaks[i].ID = uuid.NewString()
		}
	}
}

func (s *TimeEntryServiceImpl) loadEmployee(ctx context.Context, id, companyID string) (employee.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// employeeName is best effort; notifications fall back to the id.
func (s *TimeEntryServiceImpl) employeeName(ctx context.Context, id, companyID string) string {
	emp, err := s.employeeRepo.GetByID(ctx, id, companyID)
	if err != nil || emp.Name == "" {
		return id
	}
	return emp.Name
}

// finish drains the outbox after the write and renders the mutation result.
func (s *TimeEntryServiceImpl) finish(ctx context.Context, sess session, entry *timeentry.TimeEntry, name string, outbox *notification.Outbox) timeentry.MutationResponse {
	resp := timeentry.MutationResponse{Deleted: entry == nil}
	if entry != nil {
		view := toResponse(*entry, name, sess.now, sess.loc)
		resp.Entry = &view
	}
	if outbox == nil {
		return resp
	}
	if outbox.Len() > 0 {
		resp.Warnings = s.dispatcher.Dispatch(ctx, outbox.Events())
	}
	resp.Warnings = append(resp.Warnings, outbox.Warnings()...)
	return resp
}

func NewTimeEntryService(
	repo timeentry.TimeEntryRepository,
	employeeRepo employee.EmployeeRepository,
	settingsRepo settings.SettingsRepository,
	tx database.Transactor,
	dispatcher notification.Dispatcher,
	clock timecalc.Clock,
) timeentry.TimeEntryService {
	return &TimeEntryServiceImpl{
		repo:         repo,
		employeeRepo: employeeRepo,
		settingsRepo: settingsRepo,
		tx:           tx,
		dispatcher:   dispatcher,
		clock:        clock,
		cache:        newEntryCache(defaultCacheTTL, clock.Now),
	}
}
