package timeentry

import "errors"

// Validation errors. The messages are shown to users verbatim.
var (
	ErrBreaksWithoutClockIn   = errors.New("cannot log breaks without a clock-in")
	ErrBreakBeforeClockIn     = errors.New("break cannot start before clock-in")
	ErrBreakAfterClockOut     = errors.New("break cannot start after clock-out")
	ErrBreakEndsAfterClockOut = errors.New("break must end before or at clock-out")
	ErrBreaksOverlap          = errors.New("breaks cannot overlap")
	ErrClockOutBeforeClockIn  = errors.New("clock-out cannot be before clock-in")
	ErrBreakEndsBeforeStart   = errors.New("break cannot end before it starts")
	ErrClockOutWithoutIn      = errors.New("cannot log a clock-out without a clock-in")
)

// Time entry domain errors
var (
	// Lookup
	ErrTimeEntryNotFound = errors.New("time entry not found")
	ErrTimeEntryExists   = errors.New("a time entry already exists for this employee and date")

	// Day actions
	ErrActionNotAllowed     = errors.New("this action is not available in the current status")
	ErrBlockedByPastEntry   = errors.New("a past day is missing a clock-out; submit a correction for it first")
	ErrAlreadyClockedIn     = errors.New("you have already clocked in today")
	ErrNotClockedIn         = errors.New("you have not clocked in yet")
	ErrNoOpenBreak          = errors.New("there is no break in progress")
	ErrHalfSickBeforeCutoff = errors.New("a half sick day can only be marked after the half-day cutoff time")
	ErrFutureDate           = errors.New("date cannot be in the future")
	ErrInvalidOffDayKind    = errors.New("off-day type must be one of sick, half_sick, vacation")

	// Change requests
	ErrNoChangeRequest      = errors.New("this time entry has no pending change request")
	ErrEmptyChangeRequest   = errors.New("change request does not change anything")
	ErrChangeRequestPending = errors.New("a change request is already pending for this day")

	// Vacation requests
	ErrNoVacationRequest       = errors.New("this time entry has no pending vacation request")
	ErrVacationRequestPending  = errors.New("a vacation request is pending for this day")
	ErrVacationAlreadyGranted  = errors.New("this day is already a vacation day")
	ErrVacationDaysExhausted   = errors.New("no vacation days left for this year")
	ErrVacationInPast          = errors.New("vacation can only be requested for today or a future date")
	ErrDayAlreadyHasWorkRecord = errors.New("this day already has recorded work")
)

// IsValidationError reports whether err is one of the entry validation failures.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrBreaksWithoutClockIn, ErrBreakBeforeClockIn, ErrBreakAfterClockOut,
		ErrBreakEndsAfterClockOut, ErrBreaksOverlap, ErrClockOutBeforeClockIn,
		ErrBreakEndsBeforeStart, ErrClockOutWithoutIn,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
