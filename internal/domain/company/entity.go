package company

import "time"

// Company is a tenant. Every employee, entry and setting belongs to exactly one.
type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
