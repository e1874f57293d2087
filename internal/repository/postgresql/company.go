package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/company"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/database"
)

type companyRepositoryImpl struct {
	db database.Pool
}

func NewCompanyRepository(db database.Pool) company.CompanyRepository {
	return &companyRepositoryImpl{db: db}
}

// GetByID implements company.CompanyRepository.
func (c *companyRepositoryImpl) GetByID(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	var result company.Company
	err := q.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM companies WHERE id = $1`, id).
		Scan(&result.ID, &result.Name, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, company.ErrCompanyNotFound
		}
		return company.Company{}, fmt.Errorf("failed to get company with id %s: %w", id, err)
	}
	return result, nil
}

// Create implements company.CompanyRepository.
func (c *companyRepositoryImpl) Create(ctx context.Context, newCompany company.Company) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	err := q.QueryRow(ctx, `INSERT INTO companies (name) VALUES ($1) RETURNING id, created_at, updated_at`, newCompany.Name).
		Scan(&newCompany.ID, &newCompany.CreatedAt, &newCompany.UpdatedAt)
	if err != nil {
		return company.Company{}, fmt.Errorf("failed to create company: %w", err)
	}
	return newCompany, nil
}

// UpdateName implements company.CompanyRepository.
func (c *companyRepositoryImpl) UpdateName(ctx context.Context, id string, name string) error {
	if name == "" {
		return company.ErrInvalidCompanyName
	}

	q := GetQuerier(ctx, c.db)
	tag, err := q.Exec(ctx, `UPDATE companies SET name = $1, updated_at = NOW() WHERE id = $2`, name, id)
	if err != nil {
		return fmt.Errorf("failed to update company with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}

// ListIDs implements company.CompanyRepository.
func (c *companyRepositoryImpl) ListIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, c.db)

	rows, err := q.Query(ctx, `SELECT id FROM companies ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan company id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
