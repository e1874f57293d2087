package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/timeentry"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/database"
)

const timeEntryColumns = `id, company_id, employee_id, date::text, clock_in, clock_out, notes,
	is_sick_day, is_half_sick_day, is_vacation_day, change_request, pending_approval, created_at, updated_at`

type timeEntryRepositoryImpl struct {
	db database.Pool
}

func NewTimeEntryRepository(db database.Pool) timeentry.TimeEntryRepository {
	return &timeEntryRepositoryImpl{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTimeEntry(row rowScanner) (timeentry.TimeEntry, error) {
	var (
		e             timeentry.TimeEntry
		changeRequest []byte
	)
	err := row.Scan(
		&e.ID,
		&e.CompanyID,
		&e.EmployeeID,
		&e.Date,
		&e.Current.ClockIn,
		&e.Current.ClockOut,
		&e.Current.Notes,
		&e.Current.IsSickDay,
		&e.Current.IsHalfSickDay,
		&e.Current.IsVacationDay,
		&changeRequest,
		&e.PendingApproval,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return timeentry.TimeEntry{}, err
	}

	if len(changeRequest) > 0 {
		var cr timeentry.ChangeRequest
		if err := json.Unmarshal(changeRequest, &cr); err != nil {
			return timeentry.TimeEntry{}, fmt.Errorf("failed to decode change request of entry %s: %w", e.ID, err)
		}
		e.Pending = &cr
	}
	e.Current.Breaks = []timeentry.Break{}
	return e, nil
}

func encodeChangeRequest(cr *timeentry.ChangeRequest) ([]byte, error) {
	if cr == nil {
		return nil, nil
	}
	data, err := json.Marshal(cr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode change request: %w", err)
	}
	return data, nil
}

func (r *timeEntryRepositoryImpl) insertBreaks(ctx context.Context, q database.Querier, entryID string, breaks []timeentry.Break) error {
	if len(breaks) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(breaks))
	valueArgs := make([]interface{}, 0, len(breaks)*4)
	for i, b := range breaks {
		base := i * 4
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		valueArgs = append(valueArgs, b.ID, entryID, b.StartTime, b.EndTime)
	}

	query := `INSERT INTO time_entry_breaks (id, time_entry_id, start_time, end_time) VALUES ` + strings.Join(valueStrings, ", ")
	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to insert breaks: %w", err)
	}
	return nil
}

// attachBreaks loads the breaks of every entry in one query.
func (r *timeEntryRepositoryImpl) attachBreaks(ctx context.Context, entries []timeentry.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, len(entries))
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		index[e.ID] = i
	}

	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id, time_entry_id, start_time, end_time
		FROM time_entry_breaks
		WHERE time_entry_id = ANY($1)
		ORDER BY start_time, id
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query breaks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			b       timeentry.Break
			entryID string
		)
		if err := rows.Scan(&b.ID, &entryID, &b.StartTime, &b.EndTime); err != nil {
			return fmt.Errorf("failed to scan break: %w", err)
		}
		if i, ok := index[entryID]; ok {
			entries[i].Current.Breaks = append(entries[i].Current.Breaks, b)
		}
	}
	return rows.Err()
}

func (r *timeEntryRepositoryImpl) queryEntries(ctx context.Context, query string, args ...interface{}) ([]timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var entries []timeentry.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate time entries: %w", err)
	}
	rows.Close()

	if err := r.attachBreaks(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Create implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) Create(ctx context.Context, entry timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	changeRequest, err := encodeChangeRequest(entry.Pending)
	if err != nil {
		return timeentry.TimeEntry{}, err
	}

	created := entry.Clone()
	err = WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)
		err := q.QueryRow(ctx, `
			INSERT INTO time_entries (id, company_id, employee_id, date, clock_in, clock_out, notes,
				is_sick_day, is_half_sick_day, is_vacation_day, change_request, pending_approval)
			VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4::date, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, created_at, updated_at
		`,
			entry.ID,
			entry.CompanyID,
			entry.EmployeeID,
			entry.Date,
			entry.Current.ClockIn,
			entry.Current.ClockOut,
			entry.Current.Notes,
			entry.Current.IsSickDay,
			entry.Current.IsHalfSickDay,
			entry.Current.IsVacationDay,
			changeRequest,
			entry.PendingApproval,
		).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return timeentry.ErrTimeEntryExists
			}
			if isForeignKeyViolation(err) {
				return employee.ErrEmployeeNotFound
			}
			return fmt.Errorf("failed to insert time entry: %w", err)
		}
		return r.insertBreaks(ctx, q, created.ID, entry.Current.Breaks)
	})
	if err != nil {
		return timeentry.TimeEntry{}, err
	}
	return created, nil
}

// Update implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) Update(ctx context.Context, entry timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	changeRequest, err := encodeChangeRequest(entry.Pending)
	if err != nil {
		return timeentry.TimeEntry{}, err
	}

	updated := entry.Clone()
	err = WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)
		err := q.QueryRow(ctx, `
			UPDATE time_entries
			SET clock_in = $1, clock_out = $2, notes = $3, is_sick_day = $4, is_half_sick_day = $5,
				is_vacation_day = $6, change_request = $7, pending_approval = $8, updated_at = NOW()
			WHERE id = $9 AND company_id = $10
			RETURNING updated_at
		`,
			entry.Current.ClockIn,
			entry.Current.ClockOut,
			entry.Current.Notes,
			entry.Current.IsSickDay,
			entry.Current.IsHalfSickDay,
			entry.Current.IsVacationDay,
			changeRequest,
			entry.PendingApproval,
			entry.ID,
			entry.CompanyID,
		).Scan(&updated.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return timeentry.ErrTimeEntryNotFound
			}
			return fmt.Errorf("failed to update time entry: %w", err)
		}

		if _, err := q.Exec(ctx, `DELETE FROM time_entry_breaks WHERE time_entry_id = $1`, entry.ID); err != nil {
			return fmt.Errorf("failed to clear breaks: %w", err)
		}
		return r.insertBreaks(ctx, q, entry.ID, entry.Current.Breaks)
	})
	if err != nil {
		return timeentry.TimeEntry{}, err
	}
	return updated, nil
}

// GetByID implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (timeentry.TimeEntry, error) {
	entries, err := r.queryEntries(ctx, `SELECT `+timeEntryColumns+` FROM time_entries WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return timeentry.TimeEntry{}, err
	}
	if len(entries) == 0 {
		return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
	}
	return entries[0], nil
}

// GetByEmployeeAndDate implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string, companyID string) (*timeentry.TimeEntry, error) {
	entries, err := r.queryEntries(ctx, `
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE employee_id = $1 AND date = $2::date AND company_id = $3
	`, employeeID, date, companyID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// List implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) List(ctx context.Context, filter timeentry.Filter, companyID string) ([]timeentry.TimeEntry, int64, error) {
	where := []string{"company_id = $1"}
	args := []interface{}{companyID}

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		where = append(where, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where = append(where, fmt.Sprintf("date >= $%d::date", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where = append(where, fmt.Sprintf("date <= $%d::date", len(args)))
	}
	if filter.PendingOnly {
		where = append(where, "(change_request IS NOT NULL OR pending_approval)")
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	q := GetQuerier(ctx, r.db)
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM time_entries WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count time entries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM time_entries
		WHERE %s
		ORDER BY date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, timeEntryColumns, whereClause, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListSince implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) ListSince(ctx context.Context, employeeID string, sinceDate string, companyID string) ([]timeentry.TimeEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE employee_id = $1 AND date >= $2::date AND company_id = $3
		ORDER BY date
	`, employeeID, sinceDate, companyID)
}

// ListInRange implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) ListInRange(ctx context.Context, startDate string, endDate string, companyID string) ([]timeentry.TimeEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE company_id = $1 AND date BETWEEN $2::date AND $3::date
		ORDER BY date, employee_id
	`, companyID, startDate, endDate)
}

// ListMissingClockOut implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) ListMissingClockOut(ctx context.Context, beforeDate string, companyID string) ([]timeentry.TimeEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE company_id = $1 AND date < $2::date
			AND clock_in IS NOT NULL AND clock_out IS NULL
			AND NOT is_sick_day AND NOT is_half_sick_day AND NOT is_vacation_day
			AND change_request IS NULL
		ORDER BY date
	`, companyID, beforeDate)
}

// CountVacationDays implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) CountVacationDays(ctx context.Context, employeeID string, startDate string, endDate string, companyID string) (timeentry.VacationCount, error) {
	var count timeentry.VacationCount
	q := GetQuerier(ctx, r.db)
	err := q.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE is_vacation_day),
			COUNT(*) FILTER (WHERE pending_approval AND NOT is_vacation_day)
		FROM time_entries
		WHERE employee_id = $1 AND company_id = $2 AND date BETWEEN $3::date AND $4::date
	`, employeeID, companyID, startDate, endDate).Scan(&count.Granted, &count.Pending)
	if err != nil {
		return timeentry.VacationCount{}, fmt.Errorf("failed to count vacation days: %w", err)
	}
	return count, nil
}

// Delete implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) Delete(ctx context.Context, id string, companyID string) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)
		if _, err := q.Exec(ctx, `
			DELETE FROM time_entry_breaks
			WHERE time_entry_id = (SELECT id FROM time_entries WHERE id = $1 AND company_id = $2)
		`, id, companyID); err != nil {
			return fmt.Errorf("failed to delete breaks: %w", err)
		}

		tag, err := q.Exec(ctx, `DELETE FROM time_entries WHERE id = $1 AND company_id = $2`, id, companyID)
		if err != nil {
			return fmt.Errorf("failed to delete time entry: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return timeentry.ErrTimeEntryNotFound
		}
		return nil
	})
}

type alertRepositoryImpl struct {
	db database.Pool
}

func NewAlertRepository(db database.Pool) timeentry.AlertRepository {
	return &alertRepositoryImpl{db: db}
}

// MarkMissingClockOutAlert implements timeentry.AlertRepository.
func (r *alertRepositoryImpl) MarkMissingClockOutAlert(ctx context.Context, entryID string, alertDate string) (bool, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		INSERT INTO missing_clock_out_alerts (time_entry_id, alert_date)
		VALUES ($1, $2::date)
		ON CONFLICT (time_entry_id, alert_date) DO NOTHING
	`, entryID, alertDate)
	if err != nil {
		return false, fmt.Errorf("failed to mark alert: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
