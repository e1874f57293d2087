package timeentry

import "context"

// Filter narrows time entry listings. Dates are inclusive YYYY-MM-DD keys.
type Filter struct {
	EmployeeID  *string
	StartDate   *string
	EndDate     *string
	PendingOnly bool
	Page        int
	Limit       int
}

// VacationCount splits vacation days by decision state.
type VacationCount struct {
	Granted int
	Pending int
}

// TimeEntryRepository defines data access for time entries and their breaks.
// Every method is scoped by companyID.
type TimeEntryRepository interface {
	// Create inserts the entry row and its breaks, returning the stored entry.
	Create(ctx context.Context, entry TimeEntry) (TimeEntry, error)

	// Update rewrites the entry row and replaces its breaks (delete then reinsert).
	Update(ctx context.Context, entry TimeEntry) (TimeEntry, error)

	GetByID(ctx context.Context, id string, companyID string) (TimeEntry, error)

	// GetByEmployeeAndDate returns nil when the day has no entry.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date string, companyID string) (*TimeEntry, error)

	List(ctx context.Context, filter Filter, companyID string) ([]TimeEntry, int64, error)

	// ListSince loads an employee's history from date onwards (bounded history load).
	ListSince(ctx context.Context, employeeID string, sinceDate string, companyID string) ([]TimeEntry, error)

	// ListInRange loads every entry of the tenant dated within [startDate, endDate].
	ListInRange(ctx context.Context, startDate string, endDate string, companyID string) ([]TimeEntry, error)

	// ListMissingClockOut returns past entries with a clock-in, no clock-out, no off-day flag and no proposal.
	ListMissingClockOut(ctx context.Context, beforeDate string, companyID string) ([]TimeEntry, error)

	// CountVacationDays counts granted vacation days and open vacation requests within the range.
	CountVacationDays(ctx context.Context, employeeID string, startDate string, endDate string, companyID string) (VacationCount, error)

	// Delete removes the breaks first, then the entry.
	Delete(ctx context.Context, id string, companyID string) error
}

// AlertRepository records which missing clock-out reminders were already sent.
type AlertRepository interface {
	// MarkMissingClockOutAlert returns true only for the first mark of (entryID, alertDate).
	MarkMissingClockOutAlert(ctx context.Context, entryID string, alertDate string) (bool, error)
}
