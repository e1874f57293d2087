package settings

import (
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
)

// DefaultHalfSickCutoff applies when a tenant has not configured one.
const DefaultHalfSickCutoff = "12:00"

// AppSettings is the per-tenant configuration singleton.
type AppSettings struct {
	CompanyID             string
	CompanyName           string
	LogoURL               *string
	BookkeeperEmail       *string
	OwnerName             *string
	OwnerEmail            *string
	HalfSickCutoff        string // "HH:mm" in the tenant timezone
	Timezone              string // IANA zone name
	MissingClockOutAlerts bool
	UpdatedAt             time.Time
}

// Location is the business timezone, UTC when unset or unknown.
func (s AppSettings) Location() *time.Location {
	return timecalc.LoadLocation(s.Timezone)
}

// Cutoff returns the configured half-sick cutoff or the default.
func (s AppSettings) Cutoff() string {
	if s.HalfSickCutoff == "" {
		return DefaultHalfSickCutoff
	}
	return s.HalfSickCutoff
}

// HalfSickAllowedAt reports whether the half-sick toggle is open for date at now.
// Only today is gated: the toggle opens at the cutoff on the business clock.
func (s AppSettings) HalfSickAllowedAt(date string, now time.Time) (bool, error) {
	loc := s.Location()
	if date != timecalc.LocalDateKey(now, loc) {
		return true, nil
	}
	cutoff, err := timecalc.CombineDateAndClockTime(date, s.Cutoff(), loc)
	if err != nil {
		return false, err
	}
	return !now.Before(cutoff), nil
}
