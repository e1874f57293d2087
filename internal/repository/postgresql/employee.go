package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/database"
	"github.com/shopspring/decimal"
)

const employeeColumns = `id, company_id, name, email, role, hourly_rate, vacation_days_total,
	is_admin, is_bookkeeper, is_active, password_hash, invite_token, invite_sent_at, invite_accepted_at,
	created_at, updated_at`

type employeeRepositoryImpl struct {
	db database.Pool
}

func NewEmployeeRepository(db database.Pool) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row rowScanner) (employee.Employee, error) {
	var (
		e    employee.Employee
		rate decimal.NullDecimal
	)
	err := row.Scan(
		&e.ID,
		&e.CompanyID,
		&e.Name,
		&e.Email,
		&e.Role,
		&rate,
		&e.VacationDaysTotal,
		&e.IsAdmin,
		&e.IsBookkeeper,
		&e.IsActive,
		&e.PasswordHash,
		&e.InviteToken,
		&e.InviteSentAt,
		&e.InviteAcceptedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}
	if rate.Valid {
		e.HourlyRate = &rate.Decimal
	}
	return e, nil
}

func nullRate(rate *decimal.Decimal) decimal.NullDecimal {
	if rate == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *rate, Valid: true}
}

func translateEmployeeError(err error) error {
	switch {
	case isUniqueViolation(err):
		return employee.ErrEmailExists
	case pgErrorCode(err) == "23514":
		return employee.ErrAdminAndBookkeeper
	}
	return err
}

func (r *employeeRepositoryImpl) getOne(ctx context.Context, where string, args ...interface{}) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	e, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE `+where, args...))
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (r *employeeRepositoryImpl) getMany(ctx context.Context, query string, args ...interface{}) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (company_id, name, email, role, hourly_rate, vacation_days_total,
			is_admin, is_bookkeeper, is_active, password_hash, invite_accepted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		newEmployee.CompanyID,
		newEmployee.Name,
		newEmployee.Email,
		newEmployee.Role,
		nullRate(newEmployee.HourlyRate),
		newEmployee.VacationDaysTotal,
		newEmployee.IsAdmin,
		newEmployee.IsBookkeeper,
		newEmployee.IsActive,
		newEmployee.PasswordHash,
		newEmployee.InviteAcceptedAt,
	).Scan(&newEmployee.ID, &newEmployee.CreatedAt, &newEmployee.UpdatedAt)
	if err != nil {
		if translated := translateEmployeeError(err); translated != err {
			return employee.Employee{}, translated
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return newEmployee, nil
}

// Update implements employee.EmployeeRepository. Credentials and invitation
// state are not touched here.
func (r *employeeRepositoryImpl) Update(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET name = $1, email = $2, role = $3, hourly_rate = $4, vacation_days_total = $5,
			is_admin = $6, is_bookkeeper = $7, updated_at = NOW()
		WHERE id = $8 AND company_id = $9
		RETURNING updated_at
	`
	err := q.QueryRow(ctx, query,
		e.Name,
		e.Email,
		e.Role,
		nullRate(e.HourlyRate),
		e.VacationDaysTotal,
		e.IsAdmin,
		e.IsBookkeeper,
		e.ID,
		e.CompanyID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		if translated := translateEmployeeError(err); translated != err {
			return employee.Employee{}, translated
		}
		return employee.Employee{}, fmt.Errorf("failed to update employee with id %s: %w", e.ID, err)
	}
	return e, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	return r.getOne(ctx, "id = $1 AND company_id = $2", id, companyID)
}

// GetByIDUnscoped implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByIDUnscoped(ctx context.Context, id string) (employee.Employee, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return r.getOne(ctx, "lower(email) = lower($1)", email)
}

// GetByInviteToken implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByInviteToken(ctx context.Context, token string) (employee.Employee, error) {
	return r.getOne(ctx, "invite_token = $1", token)
}

// ExistsByEmail implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ExistsByEmail(ctx context.Context, email string, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS(SELECT 1 FROM employees WHERE lower(email) = lower($1) AND ($2::uuid IS NULL OR id <> $2::uuid))`
	var exists bool
	if err := q.QueryRow(ctx, query, email, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check employee email: %w", err)
	}
	return exists, nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.Filter, companyID string) ([]employee.Employee, int64, error) {
	where := []string{"company_id = $1"}
	args := []interface{}{companyID}

	if !filter.IncludeInactive {
		where = append(where, "is_active")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR role ILIKE $%d)", len(args), len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	q := GetQuerier(ctx, r.db)
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM employees WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM employees WHERE %s ORDER BY name, id LIMIT $%d OFFSET $%d`,
		employeeColumns, whereClause, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	employees, err := r.getMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// ListAll implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListAll(ctx context.Context, companyID string, includeInactive bool) ([]employee.Employee, error) {
	return r.getMany(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE company_id = $1 AND (is_active OR $2)
		ORDER BY name, id
	`, companyID, includeInactive)
}

// ListAdmins implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListAdmins(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return r.getMany(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE company_id = $1 AND is_admin AND is_active
		ORDER BY created_at
	`, companyID)
}

func (r *employeeRepositoryImpl) execOne(ctx context.Context, query string, args ...interface{}) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// SetActive implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) SetActive(ctx context.Context, id string, companyID string, active bool) error {
	err := r.execOne(ctx, `UPDATE employees SET is_active = $1, updated_at = NOW() WHERE id = $2 AND company_id = $3`, active, id, companyID)
	if err != nil && !errors.Is(err, employee.ErrEmployeeNotFound) {
		return fmt.Errorf("failed to set employee active state: %w", err)
	}
	return err
}

// SetInvitation implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) SetInvitation(ctx context.Context, id string, companyID string, token string) error {
	err := r.execOne(ctx, `
		UPDATE employees
		SET invite_token = $1, invite_sent_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND company_id = $3
	`, token, id, companyID)
	if err != nil && !errors.Is(err, employee.ErrEmployeeNotFound) {
		return fmt.Errorf("failed to store invitation: %w", err)
	}
	return err
}

// AcceptInvitation implements employee.EmployeeRepository. The token is
// cleared so it cannot be used twice.
func (r *employeeRepositoryImpl) AcceptInvitation(ctx context.Context, id string, passwordHash string) error {
	err := r.execOne(ctx, `
		UPDATE employees
		SET password_hash = $1, invite_accepted_at = NOW(), invite_token = NULL, updated_at = NOW()
		WHERE id = $2
	`, passwordHash, id)
	if err != nil && !errors.Is(err, employee.ErrEmployeeNotFound) {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	return err
}
