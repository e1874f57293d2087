package timeentry

import "sort"

// Status is the presentation state of an employee's day.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusWorking  Status = "working"
	StatusBreak    Status = "break"
	StatusDone     Status = "done"
	StatusVacation Status = "vacation"
	StatusSick     Status = "sick"
	StatusHalfSick Status = "half_sick"
)

// Action is something an employee can do to today's entry.
type Action string

const (
	ActionClockIn        Action = "clock_in"
	ActionClockOut       Action = "clock_out"
	ActionStartBreak     Action = "start_break"
	ActionEndBreak       Action = "end_break"
	ActionToggleSick     Action = "toggle_sick"
	ActionToggleHalfSick Action = "toggle_half_sick"
	ActionToggleVacation Action = "toggle_vacation"
)

var offDayToggles = []Action{ActionToggleSick, ActionToggleHalfSick, ActionToggleVacation}

var allowedActions = map[Status][]Action{
	StatusIdle:    append([]Action{ActionClockIn}, offDayToggles...),
	StatusWorking: {ActionStartBreak, ActionClockOut, ActionToggleHalfSick},
	// Break is a blocking state: the only way forward is ending the break.
	StatusBreak:    {ActionEndBreak},
	StatusDone:     offDayToggles,
	StatusVacation: offDayToggles,
	StatusSick:     offDayToggles,
	StatusHalfSick: offDayToggles,
}

// DeriveStatus evaluates the entry in strict priority order. A nil entry is idle.
func DeriveStatus(entry *TimeEntry) Status {
	if entry == nil {
		return StatusIdle
	}
	f := entry.Current
	switch {
	case f.IsVacationDay:
		return StatusVacation
	case f.IsSickDay:
		return StatusSick
	case f.IsHalfSickDay:
		return StatusHalfSick
	case f.ClockOut != nil:
		return StatusDone
	case f.OpenBreak() != nil:
		return StatusBreak
	case f.ClockIn != nil:
		return StatusWorking
	default:
		return StatusIdle
	}
}

// AllowedActions lists the actions permitted in status s.
func AllowedActions(s Status) []Action {
	actions := allowedActions[s]
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// Allows reports whether action a is permitted in status s.
func (s Status) Allows(a Action) bool {
	for _, allowed := range allowedActions[s] {
		if allowed == a {
			return true
		}
	}
	return false
}

// ToggleAction maps an off-day kind to its action.
func ToggleAction(kind OffDayKind) Action {
	switch kind {
	case OffDaySick:
		return ActionToggleSick
	case OffDayHalfSick:
		return ActionToggleHalfSick
	default:
		return ActionToggleVacation
	}
}

// IsBlocking reports whether a past entry locks its employee out of an idle today:
// it has a clock-in but no clock-out, carries no off-day flag and nobody has
// proposed a correction yet.
func IsBlocking(entry TimeEntry, today string) bool {
	f := entry.Current
	return entry.Date < today &&
		!f.HasOffDayFlag() &&
		!entry.PendingApproval &&
		entry.Pending == nil &&
		f.ClockIn != nil &&
		f.ClockOut == nil
}

// FindBlockingEntry returns the earliest-dated blocking entry, or nil.
func FindBlockingEntry(entries []TimeEntry, today string) *TimeEntry {
	var blocking []TimeEntry
	for _, e := range entries {
		if IsBlocking(e, today) {
			blocking = append(blocking, e)
		}
	}
	if len(blocking) == 0 {
		return nil
	}
	sort.SliceStable(blocking, func(i, j int) bool {
		if blocking[i].Date == blocking[j].Date {
			return blocking[i].ID < blocking[j].ID
		}
		return blocking[i].Date < blocking[j].Date
	})
	found := blocking[0]
	return &found
}
