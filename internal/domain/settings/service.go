package settings

import "context"

// SettingsService reads and updates the caller's tenant settings.
type SettingsService interface {
	Get(ctx context.Context) (SettingsResponse, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)

	// ForCompany is used by other services; missing rows fall back to defaults.
	ForCompany(ctx context.Context, companyID string) (AppSettings, error)
}
