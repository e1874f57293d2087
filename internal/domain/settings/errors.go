package settings

import "errors"

var (
	ErrSettingsNotFound = errors.New("settings not found")
	ErrInvalidTimezone  = errors.New("timezone must be a valid IANA zone name")
	ErrInvalidCutoff    = errors.New("half_sick_cutoff must be in HH:mm format")
)
