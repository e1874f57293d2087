package report

import "errors"

var (
	ErrInvalidDateRange  = errors.New("end date must not be before start date")
	ErrPeriodTooLong     = errors.New("period must not exceed 366 days")
	ErrNoRecipient       = errors.New("no recipient: set a bookkeeper email in settings or pass a recipient")
	ErrUnsupportedFormat = errors.New("format must be xlsx or pdf")
)
