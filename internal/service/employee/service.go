package employee

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/punchcard-hq/punchcard-backend/internal/config"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/company"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/invitation"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/database"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	companyRepo  company.CompanyRepository
	issuer       invitation.Issuer
	tx           database.Transactor
	dispatcher   notification.Dispatcher
	invitations  config.InvitationConfig
	clock        timecalc.Clock
}

func NewEmployeeService(
	employeeRepo employee.EmployeeRepository,
	companyRepo company.CompanyRepository,
	issuer invitation.Issuer,
	tx database.Transactor,
	dispatcher notification.Dispatcher,
	invitations config.InvitationConfig,
	clock timecalc.Clock,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		companyRepo:  companyRepo,
		issuer:       issuer,
		tx:           tx,
		dispatcher:   dispatcher,
		invitations:  invitations,
		clock:        clock,
	}
}

func (s *EmployeeServiceImpl) toResponse(e employee.Employee) employee.EmployeeResponse {
	return employee.NewEmployeeResponse(e, s.clock.Now(), s.invitations.Expiry)
}

func (s *EmployeeServiceImpl) load(ctx context.Context, id, companyID string) (employee.Employee, error) {
	e, err := s.employeeRepo.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (s *EmployeeServiceImpl) companyName(ctx context.Context, companyID string) (string, error) {
	c, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return "", fmt.Errorf("failed to get company: %w", err)
	}
	return c.Name, nil
}

func (s *EmployeeServiceImpl) checkEmailFree(ctx context.Context, email *string, excludeID *string) error {
	if email == nil {
		return nil
	}
	exists, err := s.employeeRepo.ExistsByEmail(ctx, *email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return employee.ErrEmailExists
	}
	return nil
}

// issue runs inside the caller's transaction and returns the event to dispatch after commit.
func (s *EmployeeServiceImpl) issue(ctx context.Context, e employee.Employee) ([]notification.Event, error) {
	name, err := s.companyName(ctx, e.CompanyID)
	if err != nil {
		return nil, err
	}
	event, err := s.issuer.Issue(ctx, e, name)
	if err != nil {
		return nil, err
	}
	return []notification.Event{event}, nil
}

// reload re-reads the employee after commit so invitation fields are current.
func (s *EmployeeServiceImpl) reload(ctx context.Context, id, companyID string, outbox []notification.Event) (employee.MutationResponse, error) {
	e, err := s.load(ctx, id, companyID)
	if err != nil {
		return employee.MutationResponse{}, err
	}
	return employee.MutationResponse{
		Employee: s.toResponse(e),
		Warnings: s.dispatcher.Dispatch(ctx, outbox),
	}, nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	claims, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, employee.Filter{
		Search:          filter.Search,
		IncludeInactive: filter.IncludeInactive,
		Page:            filter.Page,
		Limit:           filter.Limit,
	}, claims.CompanyID)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, s.toResponse(e))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Employees:  responses,
	}, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	claims, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	// Plain employees only see themselves.
	if claims.Role == employee.AccessRoleEmployee && claims.EmployeeID != id {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	e, err := s.load(ctx, id, claims.CompanyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return s.toResponse(e), nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.MutationResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.MutationResponse{}, err
	}

	claims, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return employee.MutationResponse{}, err
	}

	if err := s.checkEmailFree(ctx, req.Email, nil); err != nil {
		return employee.MutationResponse{}, err
	}

	var (
		created employee.Employee
		outbox  []notification.Event
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err = s.employeeRepo.Create(ctx, employee.Employee{
			CompanyID:         claims.CompanyID,
			Name:              req.Name,
			Email:             req.Email,
			Role:              req.Role,
			HourlyRate:        req.HourlyRate,
			VacationDaysTotal: req.VacationDaysTotal,
			IsAdmin:           req.IsAdmin,
			IsBookkeeper:      req.IsBookkeeper,
			IsActive:          true,
		})
		if err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}

		if created.Email == nil {
			return nil
		}
		outbox, err = s.issue(ctx, created)
		return err
	})
	if err != nil {
		return employee.MutationResponse{}, err
	}

	return s.reload(ctx, created.ID, claims.CompanyID, outbox)
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.MutationResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.MutationResponse{}, err
	}

	claims, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return employee.MutationResponse{}, err
	}

	existing, err := s.load(ctx, req.ID, claims.CompanyID)
	if err != nil {
		return employee.MutationResponse{}, err
	}

	updated := req.Apply(existing)
	if req.ID == claims.EmployeeID && existing.IsAdmin && !updated.IsAdmin {
		return employee.MutationResponse{}, employee.ErrCannotDemoteSelf
	}
	if updated.IsAdmin && updated.IsBookkeeper {
		return employee.MutationResponse{}, employee.ErrAdminAndBookkeeper
	}

	emailChanged := !sameEmail(existing.Email, updated.Email)
	if emailChanged {
		if err := s.checkEmailFree(ctx, updated.Email, &existing.ID); err != nil {
			return employee.MutationResponse{}, err
		}
	}

	var outbox []notification.Event
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		saved, err := s.employeeRepo.Update(ctx, updated)
		if err != nil {
			return fmt.Errorf("failed to update employee: %w", err)
		}

		// A new address gets a fresh link unless the old one was already used.
		if emailChanged && saved.Email != nil && saved.InviteAcceptedAt == nil {
			outbox, err = s.issue(ctx, saved)
			return err
		}
		return nil
	})
	if err != nil {
		return employee.MutationResponse{}, err
	}

	return s.reload(ctx, existing.ID, claims.CompanyID, outbox)
}

// ArchiveEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ArchiveEmployee(ctx context.Context, id string) error {
	claims, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	if claims.EmployeeID == id {
		return employee.ErrCannotArchiveSelf
	}

	e, err := s.load(ctx, id, claims.CompanyID)
	if err != nil {
		return err
	}
	if !e.IsActive {
		return employee.ErrEmployeeAlreadyInactive
	}

	if err := s.employeeRepo.SetActive(ctx, id, claims.CompanyID, false); err != nil {
		return fmt.Errorf("failed to archive employee: %w", err)
	}
	return nil
}

// RestoreEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) RestoreEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	claims, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	e, err := s.load(ctx, id, claims.CompanyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if e.IsActive {
		return employee.EmployeeResponse{}, employee.ErrEmployeeAlreadyActive
	}

	if err := s.employeeRepo.SetActive(ctx, id, claims.CompanyID, true); err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to restore employee: %w", err)
	}

	e.IsActive = true
	return s.toResponse(e), nil
}

// ResendInvitation implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ResendInvitation(ctx context.Context, id string) (employee.MutationResponse, error) {
	claims, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return employee.MutationResponse{}, err
	}

	e, err := s.load(ctx, id, claims.CompanyID)
	if err != nil {
		return employee.MutationResponse{}, err
	}
	if !e.IsActive {
		return employee.MutationResponse{}, employee.ErrEmployeeAlreadyInactive
	}

	var outbox []notification.Event
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		outbox, err = s.issue(ctx, e)
		return err
	})
	if err != nil {
		return employee.MutationResponse{}, err
	}

	return s.reload(ctx, id, claims.CompanyID, outbox)
}

func sameEmail(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
