package fixtures

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/settings"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/validator"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// TenantDefaults is seeded into every new tenant.
type TenantDefaults struct {
	Settings struct {
		HalfSickCutoff        string `yaml:"half_sick_cutoff"`
		Timezone              string `yaml:"timezone"`
		MissingClockOutAlerts bool   `yaml:"missing_clock_out_alerts"`
	} `yaml:"settings"`
	Owner struct {
		Role              string `yaml:"role"`
		VacationDaysTotal int    `yaml:"vacation_days_total"`
	} `yaml:"owner"`
	Employee struct {
		VacationDaysTotal int `yaml:"vacation_days_total"`
	} `yaml:"employee"`
}

var (
	loadOnce sync.Once
	loaded   TenantDefaults
	loadErr  error
)

// Defaults returns the embedded tenant defaults, parsed once.
func Defaults() (TenantDefaults, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(defaultsYAML)
	})
	return loaded, loadErr
}

// Parse decodes and validates a defaults document.
func Parse(data []byte) (TenantDefaults, error) {
	var d TenantDefaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return TenantDefaults{}, fmt.Errorf("failed to parse tenant defaults: %w", err)
	}
	if !validator.IsValidClockTime(d.Settings.HalfSickCutoff) {
		return TenantDefaults{}, fmt.Errorf("invalid default half_sick_cutoff %q", d.Settings.HalfSickCutoff)
	}
	if d.Settings.Timezone != "" && !validator.IsValidTimezone(d.Settings.Timezone) {
		return TenantDefaults{}, fmt.Errorf("invalid default timezone %q", d.Settings.Timezone)
	}
	if d.Owner.VacationDaysTotal < 0 || d.Employee.VacationDaysTotal < 0 {
		return TenantDefaults{}, fmt.Errorf("vacation_days_total must not be negative")
	}
	return d, nil
}

// NewSettings builds the initial settings row of a tenant. A valid timezone
// chosen at registration wins over the default.
func (d TenantDefaults) NewSettings(companyID, companyName, ownerName, ownerEmail, timezone string) settings.AppSettings {
	tz := d.Settings.Timezone
	if timezone != "" && validator.IsValidTimezone(timezone) {
		tz = timezone
	}
	if tz == "" {
		tz = timecalc.LoadLocation("").String()
	}
	return settings.AppSettings{
		CompanyID:             companyID,
		CompanyName:           companyName,
		OwnerName:             &ownerName,
		OwnerEmail:            &ownerEmail,
		HalfSickCutoff:        d.Settings.HalfSickCutoff,
		Timezone:              tz,
		MissingClockOutAlerts: d.Settings.MissingClockOutAlerts,
	}
}
