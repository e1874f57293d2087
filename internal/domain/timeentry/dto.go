package timeentry

import (
	"fmt"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/validator"
)

// ========================================
// REQUEST DTOs
// ========================================

// BreakInput is a break expressed as local wall-clock times on the entry's date.
type BreakInput struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

func validateBreakInputs(field string, breaks []BreakInput, errs *validator.ValidationErrors) {
	for i, b := range breaks {
		if !validator.IsValidClockTime(b.Start) {
			errs.Add(fmt.Sprintf("%s[%d].start", field, i), "start must be in HH:mm format")
		}
		if b.End != "" && !validator.IsValidClockTime(b.End) {
			errs.Add(fmt.Sprintf("%s[%d].end", field, i), "end must be in HH:mm format")
		}
	}
}

func toBreaks(date string, inputs []BreakInput, loc *time.Location) ([]Break, error) {
	breaks := make([]Break, 0, len(inputs))
	for _, in := range inputs {
		start, err := timecalc.CombineDateAndClockTime(date, in.Start, loc)
		if err != nil {
			return nil, err
		}
		b := Break{StartTime: start}
		if in.End != "" {
			end, err := timecalc.CombineDateAndClockTime(date, in.End, loc)
			if err != nil {
				return nil, err
			}
			b.EndTime = &end
		}
		breaks = append(breaks, b)
	}
	return breaks, nil
}

func optionalClock(date, clock string, loc *time.Location) (*time.Time, error) {
	if clock == "" {
		return nil, nil
	}
	t, err := timecalc.CombineDateAndClockTime(date, clock, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// EntryFieldsInput is the full editable payload an admin submits.
type EntryFieldsInput struct {
	ClockIn       string       `json:"clock_in,omitempty"`
	ClockOut      string       `json:"clock_out,omitempty"`
	Breaks        []BreakInput `json:"breaks"`
	Notes         string       `json:"notes"`
	IsSickDay     bool         `json:"is_sick_day"`
	IsHalfSickDay bool         `json:"is_half_sick_day"`
	IsVacationDay bool         `json:"is_vacation_day"`
}

func (r *EntryFieldsInput) validate(errs *validator.ValidationErrors) {
	if r.ClockIn != "" && !validator.IsValidClockTime(r.ClockIn) {
		errs.Add("clock_in", "clock_in must be in HH:mm format")
	}
	if r.ClockOut != "" && !validator.IsValidClockTime(r.ClockOut) {
		errs.Add("clock_out", "clock_out must be in HH:mm format")
	}
	validateBreakInputs("breaks", r.Breaks, errs)

	flags := 0
	for _, f := range []bool{r.IsSickDay, r.IsHalfSickDay, r.IsVacationDay} {
		if f {
			flags++
		}
	}
	if flags > 1 {
		errs.Add("off_day", "only one of is_sick_day, is_half_sick_day, is_vacation_day may be set")
	}
	if len(r.Notes) > 2000 {
		errs.Add("notes", "notes must not exceed 2000 characters")
	}
}

// ToFields resolves wall-clock inputs on date in loc.
func (r *EntryFieldsInput) ToFields(date string, loc *time.Location) (Fields, error) {
	clockIn, err := optionalClock(date, r.ClockIn, loc)
	if err != nil {
		return Fields{}, err
	}
	clockOut, err := optionalClock(date, r.ClockOut, loc)
	if err != nil {
		return Fields{}, err
	}
	breaks, err := toBreaks(date, r.Breaks, loc)
	if err != nil {
		return Fields{}, err
	}
	return Fields{
		ClockIn:       clockIn,
		ClockOut:      clockOut,
		Breaks:        breaks,
		Notes:         r.Notes,
		IsSickDay:     r.IsSickDay,
		IsHalfSickDay: r.IsHalfSickDay,
		IsVacationDay: r.IsVacationDay,
	}, nil
}

// AdminCreateRequest creates an entry for any employee and date (backfill, sick, vacation).
type AdminCreateRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	EntryFieldsInput
}

func (r *AdminCreateRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	r.EntryFieldsInput.validate(&errs)
	return errs.OrNil()
}

// AdminSaveRequest overwrites an entry's fields. It always discards a pending change request.
type AdminSaveRequest struct {
	ID string `json:"-"`
	EntryFieldsInput
}

func (r *AdminSaveRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	r.EntryFieldsInput.validate(&errs)
	return errs.OrNil()
}

// ToggleOffDayRequest switches an off-day flag on today's entry.
type ToggleOffDayRequest struct {
	Type OffDayKind `json:"type"`
	On   bool       `json:"on"`
}

func (r *ToggleOffDayRequest) Validate() error {
	var errs validator.ValidationErrors
	if !r.Type.IsValid() {
		errs.Add("type", ErrInvalidOffDayKind.Error())
	}
	return errs.OrNil()
}

// VacationRequest asks an admin to grant a vacation day.
type VacationRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

func (r *VacationRequest) Validate() error {
	var errs validator.ValidationErrors
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}
	return errs.OrNil()
}

// ChangeRequestRequest proposes a correction for a past or current day.
// Omitted members keep the current value. An empty clock_out clears it.
type ChangeRequestRequest struct {
	Date          string        `json:"date"`
	ClockIn       *string       `json:"clock_in,omitempty"`
	ClockOut      *string       `json:"clock_out,omitempty"`
	Breaks        *[]BreakInput `json:"breaks,omitempty"`
	Notes         *string       `json:"notes,omitempty"`
	IsSickDay     *bool         `json:"is_sick_day,omitempty"`
	IsHalfSickDay *bool         `json:"is_half_sick_day,omitempty"`
	IsVacationDay *bool         `json:"is_vacation_day,omitempty"`
	Reason        string        `json:"reason"`
}

func (r *ChangeRequestRequest) Validate() error {
	var errs validator.ValidationErrors
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if r.ClockIn != nil && *r.ClockIn != "" && !validator.IsValidClockTime(*r.ClockIn) {
		errs.Add("clock_in", "clock_in must be in HH:mm format")
	}
	if r.ClockOut != nil && *r.ClockOut != "" && !validator.IsValidClockTime(*r.ClockOut) {
		errs.Add("clock_out", "clock_out must be in HH:mm format")
	}
	if r.Breaks != nil {
		validateBreakInputs("breaks", *r.Breaks, &errs)
	}
	flagsOn := 0
	for _, f := range []*bool{r.IsSickDay, r.IsHalfSickDay, r.IsVacationDay} {
		if f != nil && *f {
			flagsOn++
		}
	}
	if flagsOn > 1 {
		errs.Add("off_day", "only one of is_sick_day, is_half_sick_day, is_vacation_day may be set")
	}
	if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}
	return errs.OrNil()
}

// ToPatch resolves the request against the entry date in loc.
func (r *ChangeRequestRequest) ToPatch(loc *time.Location) (Patch, error) {
	var p Patch
	if r.ClockIn != nil {
		if *r.ClockIn == "" {
			p.ClearClockIn = true
		} else {
			t, err := timecalc.CombineDateAndClockTime(r.Date, *r.ClockIn, loc)
			if err != nil {
				return Patch{}, err
			}
			p.ClockIn = &t
		}
	}
	if r.ClockOut != nil {
		if *r.ClockOut == "" {
			p.ClearClockOut = true
		} else {
			t, err := timecalc.CombineDateAndClockTime(r.Date, *r.ClockOut, loc)
			if err != nil {
				return Patch{}, err
			}
			p.ClockOut = &t
		}
	}
	if r.Breaks != nil {
		breaks, err := toBreaks(r.Date, *r.Breaks, loc)
		if err != nil {
			return Patch{}, err
		}
		p.Breaks = &breaks
	}
	p.Notes = r.Notes
	p.IsSickDay = r.IsSickDay
	p.IsHalfSickDay = r.IsHalfSickDay
	p.IsVacationDay = r.IsVacationDay
	return p, nil
}

// ResolveRequest approves or denies a change or vacation request.
type ResolveRequest struct {
	ID   string `json:"-"`
	Note string `json:"note"`
}

func (r *ResolveRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if len(r.Note) > 1000 {
		errs.Add("note", "note must not exceed 1000 characters")
	}
	return errs.OrNil()
}

// TimeEntryFilter is the admin and bookkeeper listing filter.
type TimeEntryFilter struct {
	EmployeeID  *string `json:"employee_id,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	PendingOnly bool    `json:"pending_only"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

func (f *TimeEntryFilter) Validate() error {
	var errs validator.ValidationErrors
	validatePaging(&f.Page, &f.Limit, &errs)
	validateOptionalDate("start_date", f.StartDate, &errs)
	validateOptionalDate("end_date", f.EndDate, &errs)
	return errs.OrNil()
}

// MyTimeEntryFilter is the employee's own history filter.
type MyTimeEntryFilter struct {
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

func (f *MyTimeEntryFilter) Validate() error {
	var errs validator.ValidationErrors
	validatePaging(&f.Page, &f.Limit, &errs)
	validateOptionalDate("start_date", f.StartDate, &errs)
	validateOptionalDate("end_date", f.EndDate, &errs)
	return errs.OrNil()
}

func validatePaging(page, limit *int, errs *validator.ValidationErrors) {
	if *page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if *page == 0 {
		*page = 1
	}
	if *limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if *limit == 0 {
		*limit = 31
	}
	if *limit > 366 {
		errs.Add("limit", "limit must not exceed 366")
	}
}

func validateOptionalDate(field string, value *string, errs *validator.ValidationErrors) {
	if value != nil && *value != "" {
		if _, ok := validator.IsValidDate(*value); !ok {
			errs.Add(field, field+" must be in YYYY-MM-DD format")
		}
	}
}

// ========================================
// RESPONSE DTOs
// ========================================

type BreakResponse struct {
	ID         string  `json:"id,omitempty"`
	StartTime  string  `json:"start_time"`
	EndTime    *string `json:"end_time,omitempty"`
	StartLabel string  `json:"start_label"`
	EndLabel   string  `json:"end_label"`
	Minutes    int     `json:"minutes"`
}

type FieldsResponse struct {
	ClockIn       *string         `json:"clock_in,omitempty"`
	ClockOut      *string         `json:"clock_out,omitempty"`
	ClockInLabel  string          `json:"clock_in_label"`
	ClockOutLabel string          `json:"clock_out_label"`
	Breaks        []BreakResponse `json:"breaks"`
	Notes         string          `json:"notes,omitempty"`
	IsSickDay     bool            `json:"is_sick_day"`
	IsHalfSickDay bool            `json:"is_half_sick_day"`
	IsVacationDay bool            `json:"is_vacation_day"`
}

type ChangeRequestResponse struct {
	FieldsResponse
	Reason      string `json:"reason,omitempty"`
	SubmittedAt string `json:"submitted_at"`
	Summary     string `json:"summary"`
}

type TimeEntryResponse struct {
	ID              string `json:"id"`
	EmployeeID      string `json:"employee_id"`
	EmployeeName    string `json:"employee_name,omitempty"`
	Date            string `json:"date"`
	FieldsResponse
	PendingApproval bool                   `json:"pending_approval"`
	ChangeRequest   *ChangeRequestResponse `json:"change_request,omitempty"`
	Stats           DerivedStats           `json:"stats"`
	WorkedLabel     string                 `json:"worked_label"`
	BreakLabel      string                 `json:"break_label"`
	Status          Status                 `json:"status"`
	CreatedAt       string                 `json:"created_at,omitempty"`
	UpdatedAt       string                 `json:"updated_at,omitempty"`
}

type ReconciliationResponse struct {
	Merged        FieldsResponse  `json:"merged"`
	Original      FieldsResponse  `json:"original"`
	Proposed      *FieldsResponse `json:"proposed,omitempty"`
	OriginalStats DerivedStats    `json:"original_stats"`
	ProposedStats *DerivedStats   `json:"proposed_stats,omitempty"`
	DeltaMinutes  int             `json:"delta_minutes"`
	DeltaLabel    string          `json:"delta_label"`
}

type TimeEntryDetailResponse struct {
	Entry          TimeEntryResponse      `json:"entry"`
	Reconciliation ReconciliationResponse `json:"reconciliation"`
}

type TodayResponse struct {
	Date           string             `json:"date"`
	Entry          *TimeEntryResponse `json:"entry,omitempty"`
	Stats          DerivedStats       `json:"stats"`
	Status         Status             `json:"status"`
	AllowedActions []Action           `json:"allowed_actions"`
	BlockingEntry  *TimeEntryResponse `json:"blocking_entry,omitempty"`
	HalfSickCutoff string             `json:"half_sick_cutoff"`
}

// MutationResponse is returned by every state-changing operation.
// Warnings carry notification delivery problems and never mean the write failed.
type MutationResponse struct {
	Entry    *TimeEntryResponse `json:"entry,omitempty"`
	Deleted  bool               `json:"deleted,omitempty"`
	Warnings []string           `json:"-"`
}

type ListTimeEntryResponse struct {
	TotalCount  int64               `json:"total_count"`
	Page        int                 `json:"page"`
	Limit       int                 `json:"limit"`
	TotalPages  int                 `json:"total_pages"`
	Showing     string              `json:"showing"`
	TimeEntries []TimeEntryResponse `json:"time_entries"`
}

type VacationBalanceResponse struct {
	Year      int `json:"year"`
	Allotment int `json:"allotment"`
	Used      int `json:"used"`
	Pending   int `json:"pending"`
	Remaining int `json:"remaining"`
}
