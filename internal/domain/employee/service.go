package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// ListEmployees lists employees with filters (admin, bookkeeper)
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// GetEmployee retrieves a single employee by ID (companyID from JWT)
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// CreateEmployee creates an employee and sends an invitation when an email is present (admin only)
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (MutationResponse, error)

	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (MutationResponse, error)

	// ArchiveEmployee soft deletes an employee; history stays queryable
	ArchiveEmployee(ctx context.Context, id string) error
	RestoreEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// ResendInvitation issues a fresh token and emails it
	ResendInvitation(ctx context.Context, id string) (MutationResponse, error)
}
