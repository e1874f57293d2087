package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/company"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/settings"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/database"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
)

type SettingsServiceImpl struct {
	settingsRepo settings.SettingsRepository
	companyRepo  company.CompanyRepository
	tx           database.Transactor
}

func NewSettingsService(settingsRepo settings.SettingsRepository, companyRepo company.CompanyRepository, tx database.Transactor) settings.SettingsService {
	return &SettingsServiceImpl{
		settingsRepo: settingsRepo,
		companyRepo:  companyRepo,
		tx:           tx,
	}
}

// ForCompany implements settings.SettingsService.
func (s *SettingsServiceImpl) ForCompany(ctx context.Context, companyID string) (settings.AppSettings, error) {
	appSettings, err := s.settingsRepo.Get(ctx, companyID)
	if err == nil {
		return appSettings, nil
	}
	if !errors.Is(err, settings.ErrSettingsNotFound) {
		return settings.AppSettings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	// No row yet: defaults, named after the company record.
	appSettings = settings.AppSettings{CompanyID: companyID, HalfSickCutoff: settings.DefaultHalfSickCutoff, Timezone: "UTC"}
	c, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			return appSettings, nil
		}
		return settings.AppSettings{}, fmt.Errorf("failed to get company: %w", err)
	}
	appSettings.CompanyName = c.Name
	return appSettings, nil
}

// Get implements settings.SettingsService.
func (s *SettingsServiceImpl) Get(ctx context.Context) (settings.SettingsResponse, error) {
	claims, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return settings.SettingsResponse{}, err
	}

	appSettings, err := s.ForCompany(ctx, claims.CompanyID)
	if err != nil {
		return settings.SettingsResponse{}, err
	}
	return settings.NewSettingsResponse(appSettings), nil
}

// Update implements settings.SettingsService.
func (s *SettingsServiceImpl) Update(ctx context.Context, req settings.UpdateSettingsRequest) (settings.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.SettingsResponse{}, err
	}

	claims, err := jwt.CallerFromContext(ctx)
	if err != nil {
		return settings.SettingsResponse{}, err
	}

	current, err := s.ForCompany(ctx, claims.CompanyID)
	if err != nil {
		return settings.SettingsResponse{}, err
	}
	updated := req.Apply(current)

	var saved settings.AppSettings
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		saved, err = s.settingsRepo.Upsert(ctx, updated)
		if err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}

		// The company record carries the tenant name too.
		if updated.CompanyName != current.CompanyName {
			if err := s.companyRepo.UpdateName(ctx, claims.CompanyID, updated.CompanyName); err != nil {
				return fmt.Errorf("failed to rename company: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return settings.SettingsResponse{}, err
	}

	return settings.NewSettingsResponse(saved), nil
}
