package timeentry

import (
	"sort"
	"time"
)

// Break is one unpaid interval inside a time entry. A nil EndTime means the break is still running.
type Break struct {
	ID        string     `json:"id,omitempty"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// IsOpen reports whether the break has not ended yet.
func (b Break) IsOpen() bool {
	return b.EndTime == nil
}

// Fields is the mutable payload of a time entry. It is used both for the
// settled values and for a pending change request.
type Fields struct {
	ClockIn       *time.Time `json:"clock_in,omitempty"`
	ClockOut      *time.Time `json:"clock_out,omitempty"`
	Breaks        []Break    `json:"breaks"`
	Notes         string     `json:"notes,omitempty"`
	IsSickDay     bool       `json:"is_sick_day"`
	IsHalfSickDay bool       `json:"is_half_sick_day"`
	IsVacationDay bool       `json:"is_vacation_day"`
}

// IsFullOffDay is true for sick and vacation days, the flags that override work data.
func (f Fields) IsFullOffDay() bool {
	return f.IsSickDay || f.IsVacationDay
}

// HasOffDayFlag is true when any of the three off-day flags is set.
func (f Fields) HasOffDayFlag() bool {
	return f.IsSickDay || f.IsHalfSickDay || f.IsVacationDay
}

// HasWorkData reports whether any clock event or break was recorded.
func (f Fields) HasWorkData() bool {
	return f.ClockIn != nil || f.ClockOut != nil || len(f.Breaks) > 0
}

// OpenBreak returns the running break, if any.
func (f Fields) OpenBreak() *Break {
	for i := range f.Breaks {
		if f.Breaks[i].IsOpen() {
			return &f.Breaks[i]
		}
	}
	return nil
}

// SortedBreaks returns a copy of the breaks ordered by start time.
func (f Fields) SortedBreaks() []Break {
	sorted := make([]Break, len(f.Breaks))
	copy(sorted, f.Breaks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	return sorted
}

// Clone deep-copies the fields so callers can mutate the result freely.
func (f Fields) Clone() Fields {
	out := f
	out.ClockIn = cloneTime(f.ClockIn)
	out.ClockOut = cloneTime(f.ClockOut)
	out.Breaks = make([]Break, len(f.Breaks))
	for i, b := range f.Breaks {
		out.Breaks[i] = Break{ID: b.ID, StartTime: b.StartTime, EndTime: cloneTime(b.EndTime)}
	}
	return out
}

// ChangeRequest is an employee-proposed replacement for the settled fields.
type ChangeRequest struct {
	Fields
	Reason      string    `json:"reason,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TimeEntry is one employee's record for one calendar day.
type TimeEntry struct {
	ID              string
	CompanyID       string
	EmployeeID      string
	Date            string // YYYY-MM-DD in the business timezone
	Current         Fields
	Pending         *ChangeRequest
	PendingApproval bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasChangeRequest reports whether a proposal is waiting for an admin.
func (e *TimeEntry) HasChangeRequest() bool {
	return e != nil && e.Pending != nil
}

// IsOpenVacationRequest distinguishes a vacation request waiting for a decision
// from a vacation day that was already granted.
func (e *TimeEntry) IsOpenVacationRequest() bool {
	return e != nil && e.PendingApproval && !e.Current.IsVacationDay
}

// IsEmpty is true when nothing worth keeping remains on the entry.
func (e *TimeEntry) IsEmpty() bool {
	if e == nil {
		return true
	}
	return !e.Current.HasWorkData() && !e.Current.HasOffDayFlag() &&
		e.Pending == nil && !e.PendingApproval && e.Current.Notes == ""
}

// Clone deep-copies the entry.
func (e TimeEntry) Clone() TimeEntry {
	out := e
	out.Current = e.Current.Clone()
	if e.Pending != nil {
		p := *e.Pending
		p.Fields = e.Pending.Fields.Clone()
		out.Pending = &p
	}
	return out
}

// IssueType is a derived anomaly attached to a day's stats.
type IssueType string

const (
	IssueSickDay          IssueType = "SICK_DAY"
	IssueVacationDay      IssueType = "VACATION_DAY"
	IssueChangeRequested  IssueType = "CHANGE_REQUESTED"
	IssueOpenBreak        IssueType = "OPEN_BREAK"
	IssueMissingClockOut  IssueType = "MISSING_CLOCK_OUT"
	IssueLongShiftNoBreak IssueType = "LONG_SHIFT_NO_BREAK"
)

// DerivedStats is recomputed from an entry on every read and never stored.
type DerivedStats struct {
	TotalWorkedMinutes int         `json:"total_worked_minutes"`
	TotalBreakMinutes  int         `json:"total_break_minutes"`
	Issues             []IssueType `json:"issues"`
}

// Has reports whether issue is present.
func (s DerivedStats) Has(issue IssueType) bool {
	for _, i := range s.Issues {
		if i == issue {
			return true
		}
	}
	return false
}

func (s *DerivedStats) add(issue IssueType) {
	if !s.Has(issue) {
		s.Issues = append(s.Issues, issue)
	}
}

// OffDayKind names one of the three off-day flags.
type OffDayKind string

const (
	OffDaySick     OffDayKind = "sick"
	OffDayHalfSick OffDayKind = "half_sick"
	OffDayVacation OffDayKind = "vacation"
)

func (k OffDayKind) IsValid() bool {
	switch k {
	case OffDaySick, OffDayHalfSick, OffDayVacation:
		return true
	}
	return false
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
