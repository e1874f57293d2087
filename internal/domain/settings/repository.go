package settings

import "context"

type SettingsRepository interface {
	Get(ctx context.Context, companyID string) (AppSettings, error)

	// Upsert writes the singleton row of the tenant.
	Upsert(ctx context.Context, s AppSettings) (AppSettings, error)

	// ListAlertsEnabled returns the settings of every tenant with missing clock-out alerts on.
	ListAlertsEnabled(ctx context.Context) ([]AppSettings, error)
}
