package timeentry

// ValidateFields checks a working entry before it is saved or approved.
// Full off days skip clock checks because NormalizeOffDay wipes their work data.
// Half-sick days are validated like normal days.
func ValidateFields(f Fields) error {
	if f.IsFullOffDay() {
		return nil
	}

	if len(f.Breaks) > 0 && f.ClockIn == nil {
		return ErrBreaksWithoutClockIn
	}
	if f.ClockOut != nil && f.ClockIn == nil {
		return ErrClockOutWithoutIn
	}
	if f.ClockIn != nil && f.ClockOut != nil && f.ClockOut.Before(*f.ClockIn) {
		return ErrClockOutBeforeClockIn
	}

	sorted := f.SortedBreaks()
	for i, b := range sorted {
		if f.ClockIn != nil && b.StartTime.Before(*f.ClockIn) {
			return ErrBreakBeforeClockIn
		}
		if f.ClockOut != nil && b.StartTime.After(*f.ClockOut) {
			return ErrBreakAfterClockOut
		}
		if b.EndTime != nil && b.EndTime.Before(b.StartTime) {
			return ErrBreakEndsBeforeStart
		}
		if f.ClockOut != nil && b.EndTime != nil && b.EndTime.After(*f.ClockOut) {
			return ErrBreakEndsAfterClockOut
		}
		if i+1 < len(sorted) {
			next := sorted[i+1]
			// An open break followed by another break means two breaks running at once.
			if b.EndTime == nil || next.StartTime.Before(*b.EndTime) {
				return ErrBreaksOverlap
			}
		}
	}

	return nil
}

// NormalizeOffDay forces full sick and vacation days to carry no work data.
func NormalizeOffDay(f Fields) Fields {
	if !f.IsFullOffDay() {
		return f
	}
	f.ClockIn = nil
	f.ClockOut = nil
	f.Breaks = []Break{}
	return f
}

// ToggleOffDay switches one off-day flag. Turning a flag on clears the other two.
// Full sick and vacation wipe work data; half-sick keeps it.
func ToggleOffDay(f Fields, kind OffDayKind, on bool) Fields {
	out := f.Clone()
	if !on {
		switch kind {
		case OffDaySick:
			out.IsSickDay = false
		case OffDayHalfSick:
			out.IsHalfSickDay = false
		case OffDayVacation:
			out.IsVacationDay = false
		}
		return out
	}

	out.IsSickDay = kind == OffDaySick
	out.IsHalfSickDay = kind == OffDayHalfSick
	out.IsVacationDay = kind == OffDayVacation
	return NormalizeOffDay(out)
}

// PrepareForSave normalizes off days and then validates.
func PrepareForSave(f Fields) (Fields, error) {
	f = NormalizeOffDay(f)
	if err := ValidateFields(f); err != nil {
		return Fields{}, err
	}
	if f.Breaks == nil {
		f.Breaks = []Break{}
	}
	return f, nil
}
