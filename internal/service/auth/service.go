package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/punchcard-hq/punchcard-backend/internal/config"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/auth"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/company"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/invitation"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/settings"
	"github.com/punchcard-hq/punchcard-backend/internal/fixtures"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/database"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	companyRepo  company.CompanyRepository
	settingsRepo settings.SettingsRepository
	refreshRepo  auth.RefreshTokenRepository
	jwtService   jwt.Service
	tx           database.Transactor
	invitations  config.InvitationConfig
	clock        timecalc.Clock
}

func NewAuthService(
	employeeRepo employee.EmployeeRepository,
	companyRepo company.CompanyRepository,
	settingsRepo settings.SettingsRepository,
	refreshRepo auth.RefreshTokenRepository,
	jwtService jwt.Service,
	tx database.Transactor,
	invitations config.InvitationConfig,
	clock timecalc.Clock,
) auth.AuthService {
	return &AuthServiceImpl{
		employeeRepo: employeeRepo,
		companyRepo:  companyRepo,
		settingsRepo: settingsRepo,
		refreshRepo:  refreshRepo,
		jwtService:   jwtService,
		tx:           tx,
		invitations:  invitations,
		clock:        clock,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// issueTokens creates an access/refresh pair and stores the refresh token.
// Call it inside a transaction so the token row commits with the rest.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, e employee.Employee, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var (
		resp auth.TokenResponse
		err  error
	)

	email := ""
	if e.Email != nil {
		email = *e.Email
	}

	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.jwtService.GenerateAccessToken(jwt.AccessClaims{
		EmployeeID: e.ID,
		CompanyID:  e.CompanyID,
		Email:      email,
		Role:       e.AccessRole(),
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	resp.RefreshToken, resp.RefreshTokenExpiresIn, err = a.jwtService.GenerateRefreshToken(e.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	if err := a.refreshRepo.CreateRefreshToken(ctx, e.ID, resp.RefreshToken, resp.RefreshTokenExpiresIn, session); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token to database: %w", err)
	}

	resp.EmployeeID = e.ID
	resp.CompanyID = e.CompanyID
	resp.Role = string(e.AccessRole())
	return resp, nil
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	exists, err := a.employeeRepo.ExistsByEmail(ctx, req.Email, nil)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return auth.TokenResponse{}, employee.ErrEmailExists
	}

	defaults, err := fixtures.Defaults()
	if err != nil {
		return auth.TokenResponse{}, err
	}

	hashedPassword, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var resp auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		newCompany, err := a.companyRepo.Create(ctx, company.Company{Name: req.CompanyName})
		if err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}

		appSettings := defaults.NewSettings(newCompany.ID, newCompany.Name, req.Name, req.Email, req.Timezone)
		if _, err := a.settingsRepo.Upsert(ctx, appSettings); err != nil {
			return fmt.Errorf("failed to create settings: %w", err)
		}

		// The owner chose their own password, so there is nothing to accept.
		now := a.clock.Now()
		email := req.Email
		owner, err := a.employeeRepo.Create(ctx, employee.Employee{
			CompanyID:         newCompany.ID,
			Name:              req.Name,
			Email:             &email,
			Role:              defaults.Owner.Role,
			VacationDaysTotal: defaults.Owner.VacationDaysTotal,
			IsAdmin:           true,
			IsActive:          true,
			PasswordHash:      &hashedPassword,
			InviteAcceptedAt:  &now,
		})
		if err != nil {
			return fmt.Errorf("failed to create owner: %w", err)
		}

		resp, err = a.issueTokens(ctx, owner, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("tenant registered", "company_id", resp.CompanyID, "owner_id", resp.EmployeeID)
	return resp, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	e, err := a.employeeRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get employee by email: %w", err)
	}

	if e.PasswordHash == nil || *e.PasswordHash == "" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*e.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !e.CanLogin() {
		return auth.TokenResponse{}, auth.ErrAccountArchived
	}

	var resp auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		resp, err = a.issueTokens(ctx, e, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return resp, nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	employeeID, err := a.jwtService.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	revoked, err := a.refreshRepo.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if revoked {
		return auth.TokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	e, err := a.employeeRepo.GetByIDUnscoped(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidToken
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !e.CanLogin() {
		return auth.TokenResponse{}, auth.ErrAccountArchived
	}

	var resp auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := a.refreshRepo.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		resp, err = a.issueTokens(ctx, e, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return resp, nil
}

// Logout implements auth.AuthService. Logging out twice is not an error.
func (a *AuthServiceImpl) Logout(ctx context.Context, req auth.RefreshTokenRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	revoked, err := a.refreshRepo.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to check if refresh token is revoked: %w", err)
	}
	if revoked {
		return nil
	}
	if err := a.refreshRepo.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// AcceptInvitation implements auth.AuthService.
func (a *AuthServiceImpl) AcceptInvitation(ctx context.Context, req auth.AcceptInvitationRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	e, err := a.employeeRepo.GetByInviteToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.TokenResponse{}, invitation.ErrNotFound
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get invitation: %w", err)
	}

	if err := invitation.CheckAcceptable(e, a.clock.Now(), a.invitations.Expiry); err != nil {
		return auth.TokenResponse{}, err
	}

	hashedPassword, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var resp auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := a.employeeRepo.AcceptInvitation(ctx, e.ID, hashedPassword); err != nil {
			return fmt.Errorf("failed to accept invitation: %w", err)
		}
		e.PasswordHash = &hashedPassword
		resp, err = a.issueTokens(ctx, e, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return resp, nil
}
