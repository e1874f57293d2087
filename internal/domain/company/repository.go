package company

import "context"

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (Company, error)
	Create(ctx context.Context, newCompany Company) (Company, error)
	UpdateName(ctx context.Context, id string, name string) error

	// ListIDs returns every tenant id, used by background jobs.
	ListIDs(ctx context.Context) ([]string, error)
}
