package timeentry

import (
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
)

// Patch is a partial edit. Nil members keep the base value.
type Patch struct {
	ClockIn       *time.Time
	ClearClockIn  bool
	ClockOut      *time.Time
	ClearClockOut bool
	Breaks        *[]Break
	Notes         *string
	IsSickDay     *bool
	IsHalfSickDay *bool
	IsVacationDay *bool
}

// IsEmpty reports whether the patch touches nothing.
func (p Patch) IsEmpty() bool {
	return p.ClockIn == nil && !p.ClearClockIn && p.ClockOut == nil && !p.ClearClockOut &&
		p.Breaks == nil && p.Notes == nil &&
		p.IsSickDay == nil && p.IsHalfSickDay == nil && p.IsVacationDay == nil
}

// ApplyPatch lays a partial edit over base to produce a complete set of fields.
// Off-day flags go through ToggleOffDay so exclusivity holds.
func ApplyPatch(base Fields, p Patch) Fields {
	out := base.Clone()
	if p.ClearClockIn {
		out.ClockIn = nil
	} else if p.ClockIn != nil {
		out.ClockIn = cloneTime(p.ClockIn)
	}
	if p.ClearClockOut {
		out.ClockOut = nil
	} else if p.ClockOut != nil {
		out.ClockOut = cloneTime(p.ClockOut)
	}
	if p.Breaks != nil {
		out.Breaks = Fields{Breaks: *p.Breaks}.Clone().Breaks
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}

	for _, flag := range []struct {
		kind OffDayKind
		val  *bool
	}{
		{OffDaySick, p.IsSickDay},
		{OffDayHalfSick, p.IsHalfSickDay},
		{OffDayVacation, p.IsVacationDay},
	} {
		if flag.val != nil && !*flag.val {
			out = ToggleOffDay(out, flag.kind, false)
		}
	}
	for _, flag := range []struct {
		kind OffDayKind
		val  *bool
	}{
		{OffDaySick, p.IsSickDay},
		{OffDayHalfSick, p.IsHalfSickDay},
		{OffDayVacation, p.IsVacationDay},
	} {
		if flag.val != nil && *flag.val {
			out = ToggleOffDay(out, flag.kind, true)
			break
		}
	}
	return out
}

// Reconciliation is the admin view of an entry with a pending proposal.
type Reconciliation struct {
	// Merged carries the original identity with the proposed values laid over it.
	Merged        TimeEntry
	Original      Fields
	Proposed      *Fields
	OriginalStats DerivedStats
	ProposedStats *DerivedStats
	DeltaMinutes  int
	DeltaLabel    string
}

// Reconcile compares an entry's settled values with its pending proposal.
// Without a proposal the merged view equals the entry and the delta is zero.
func Reconcile(entry TimeEntry, now time.Time, loc *time.Location) Reconciliation {
	original := entry.Clone()
	rec := Reconciliation{
		Merged:        original,
		Original:      original.Current,
		OriginalStats: ComputeStats(&original, now, loc),
		DeltaLabel:    timecalc.FormatDelta(0),
	}
	if entry.Pending == nil {
		return rec
	}

	proposed := entry.Pending.Fields.Clone()
	rec.Proposed = &proposed
	rec.Merged.Current = proposed.Clone()

	// Stats on both sides ignore the proposal marker so the delta compares work only.
	settled := TimeEntry{ID: entry.ID, EmployeeID: entry.EmployeeID, Date: entry.Date, Current: entry.Current.Clone()}
	candidate := TimeEntry{ID: entry.ID, EmployeeID: entry.EmployeeID, Date: entry.Date, Current: proposed.Clone()}
	settledStats := ComputeStats(&settled, now, loc)
	proposedStats := ComputeStats(&candidate, now, loc)
	rec.ProposedStats = &proposedStats

	rec.DeltaMinutes = proposedStats.TotalWorkedMinutes - settledStats.TotalWorkedMinutes
	rec.DeltaLabel = timecalc.FormatDelta(rec.DeltaMinutes)
	return rec
}

// Summary is the one-line description of a proposal used in notifications.
func Summary(f Fields, loc *time.Location) string {
	switch {
	case f.IsSickDay:
		return "Marked as sick"
	case f.IsVacationDay:
		return "Marked as vacation"
	}
	s := "Clock in: " + timecalc.FormatClockTime(f.ClockIn, loc) + ", Clock out: " + timecalc.FormatClockTime(f.ClockOut, loc)
	if f.IsHalfSickDay {
		s = "Marked as half sick. " + s
	}
	return s
}
