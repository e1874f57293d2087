package employee

import "context"

// Filter narrows employee listings.
type Filter struct {
	Search          string
	IncludeInactive bool
	Page            int
	Limit           int
}

type EmployeeRepository interface {
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Update(ctx context.Context, e Employee) (Employee, error)
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)

	// GetByEmail looks up a login across tenants; emails are globally unique.
	GetByEmail(ctx context.Context, email string) (Employee, error)
	GetByInviteToken(ctx context.Context, token string) (Employee, error)
	// GetByIDUnscoped serves token refresh, where the tenant is not known yet.
	GetByIDUnscoped(ctx context.Context, id string) (Employee, error)
	ExistsByEmail(ctx context.Context, email string, excludeID *string) (bool, error)

	List(ctx context.Context, filter Filter, companyID string) ([]Employee, int64, error)

	// ListAll returns every employee of the tenant, archived ones included when includeInactive.
	ListAll(ctx context.Context, companyID string, includeInactive bool) ([]Employee, error)
	ListAdmins(ctx context.Context, companyID string) ([]Employee, error)

	SetActive(ctx context.Context, id string, companyID string, active bool) error
	SetInvitation(ctx context.Context, id string, companyID string, token string) error
	AcceptInvitation(ctx context.Context, id string, passwordHash string) error
}
