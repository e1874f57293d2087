package company

import "errors"

var (
	ErrCompanyNotFound    = errors.New("company not found")
	ErrInvalidCompanyName = errors.New("company name cannot be empty")
)
