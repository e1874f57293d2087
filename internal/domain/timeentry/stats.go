package timeentry

import (
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
)

// LongShiftThresholdMinutes is the worked time above which a shift without breaks is flagged.
const LongShiftThresholdMinutes = 360

// ComputeStats derives worked and break minutes plus anomaly codes for one entry.
// A nil entry yields zero stats. Full sick and vacation days short-circuit.
// Half-sick days are computed like normal days because they may carry real work.
func ComputeStats(entry *TimeEntry, now time.Time, loc *time.Location) DerivedStats {
	stats := DerivedStats{Issues: []IssueType{}}
	if entry == nil {
		return stats
	}
	f := entry.Current

	if f.IsSickDay {
		stats.add(IssueSickDay)
		return stats
	}
	if f.IsVacationDay {
		stats.add(IssueVacationDay)
		return stats
	}
	if entry.Pending != nil {
		stats.add(IssueChangeRequested)
	}
	if f.ClockIn == nil {
		return stats
	}

	gross := timecalc.MinutesBetween(*f.ClockIn, f.ClockOut, now)
	for _, b := range f.Breaks {
		stats.TotalBreakMinutes += timecalc.MinutesBetween(b.StartTime, b.EndTime, now)
		if b.IsOpen() {
			stats.add(IssueOpenBreak)
		}
	}

	stats.TotalWorkedMinutes = gross - stats.TotalBreakMinutes
	if stats.TotalWorkedMinutes < 0 {
		stats.TotalWorkedMinutes = 0
	}

	if entry.Date < timecalc.LocalDateKey(now, loc) && f.ClockOut == nil {
		stats.add(IssueMissingClockOut)
	}
	if stats.TotalWorkedMinutes > LongShiftThresholdMinutes && len(f.Breaks) == 0 {
		stats.add(IssueLongShiftNoBreak)
	}

	return stats
}

// WorkedMinutes is a shorthand for ComputeStats(...).TotalWorkedMinutes.
func WorkedMinutes(entry *TimeEntry, now time.Time, loc *time.Location) int {
	return ComputeStats(entry, now, loc).TotalWorkedMinutes
}
