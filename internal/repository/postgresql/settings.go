package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/settings"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/database"
)

const settingsColumns = `company_id, company_name, logo_url, bookkeeper_email, owner_name, owner_email,
	half_sick_cutoff, timezone, missing_clock_out_alerts, updated_at`

type settingsRepositoryImpl struct {
	db database.Pool
}

func NewSettingsRepository(db database.Pool) settings.SettingsRepository {
	return &settingsRepositoryImpl{db: db}
}

func scanSettings(row rowScanner) (settings.AppSettings, error) {
	var s settings.AppSettings
	err := row.Scan(
		&s.CompanyID,
		&s.CompanyName,
		&s.LogoURL,
		&s.BookkeeperEmail,
		&s.OwnerName,
		&s.OwnerEmail,
		&s.HalfSickCutoff,
		&s.Timezone,
		&s.MissingClockOutAlerts,
		&s.UpdatedAt,
	)
	return s, err
}

// Get implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) Get(ctx context.Context, companyID string) (settings.AppSettings, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSettings(q.QueryRow(ctx, `SELECT `+settingsColumns+` FROM app_settings WHERE company_id = $1`, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.AppSettings{}, settings.ErrSettingsNotFound
		}
		return settings.AppSettings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

// Upsert implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) Upsert(ctx context.Context, s settings.AppSettings) (settings.AppSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO app_settings (company_id, company_name, logo_url, bookkeeper_email, owner_name, owner_email,
			half_sick_cutoff, timezone, missing_clock_out_alerts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (company_id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			logo_url = EXCLUDED.logo_url,
			bookkeeper_email = EXCLUDED.bookkeeper_email,
			owner_name = EXCLUDED.owner_name,
			owner_email = EXCLUDED.owner_email,
			half_sick_cutoff = EXCLUDED.half_sick_cutoff,
			timezone = EXCLUDED.timezone,
			missing_clock_out_alerts = EXCLUDED.missing_clock_out_alerts,
			updated_at = NOW()
		RETURNING ` + settingsColumns

	saved, err := scanSettings(q.QueryRow(ctx, query,
		s.CompanyID,
		s.CompanyName,
		s.LogoURL,
		s.BookkeeperEmail,
		s.OwnerName,
		s.OwnerEmail,
		s.Cutoff(),
		s.Timezone,
		s.MissingClockOutAlerts,
	))
	if err != nil {
		return settings.AppSettings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return saved, nil
}

// ListAlertsEnabled implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) ListAlertsEnabled(ctx context.Context) ([]settings.AppSettings, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+settingsColumns+` FROM app_settings WHERE missing_clock_out_alerts ORDER BY company_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var result []settings.AppSettings
	for rows.Next() {
		s, err := scanSettings(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settings: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
