package settings

import (
	"strings"

	"github.com/punchcard-hq/punchcard-backend/internal/pkg/validator"
)

// UpdateSettingsRequest is a partial update. An empty string clears optional members.
type UpdateSettingsRequest struct {
	CompanyName           *string `json:"company_name,omitempty"`
	LogoURL               *string `json:"logo_url,omitempty"`
	BookkeeperEmail       *string `json:"bookkeeper_email,omitempty"`
	OwnerName             *string `json:"owner_name,omitempty"`
	OwnerEmail            *string `json:"owner_email,omitempty"`
	HalfSickCutoff        *string `json:"half_sick_cutoff,omitempty"`
	Timezone              *string `json:"timezone,omitempty"`
	MissingClockOutAlerts *bool   `json:"missing_clock_out_alerts,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CompanyName != nil {
		name := strings.TrimSpace(*r.CompanyName)
		r.CompanyName = &name
		if name == "" {
			errs.Add("company_name", "company_name cannot be empty")
		} else if len(name) > 255 {
			errs.Add("company_name", "company_name must not exceed 255 characters")
		}
	}
	for field, email := range map[string]*string{
		"bookkeeper_email": r.BookkeeperEmail,
		"owner_email":      r.OwnerEmail,
	} {
		if email == nil {
			continue
		}
		*email = strings.ToLower(strings.TrimSpace(*email))
		if *email != "" && !validator.IsValidEmail(*email) {
			errs.Add(field, field+" format is invalid")
		}
	}
	if r.HalfSickCutoff != nil && !validator.IsValidClockTime(*r.HalfSickCutoff) {
		errs.Add("half_sick_cutoff", ErrInvalidCutoff.Error())
	}
	if r.Timezone != nil && !validator.IsValidTimezone(*r.Timezone) {
		errs.Add("timezone", ErrInvalidTimezone.Error())
	}

	return errs.OrNil()
}

// Apply lays the update over s.
func (r *UpdateSettingsRequest) Apply(s AppSettings) AppSettings {
	if r.CompanyName != nil {
		s.CompanyName = *r.CompanyName
	}
	s.LogoURL = applyOptional(s.LogoURL, r.LogoURL)
	s.BookkeeperEmail = applyOptional(s.BookkeeperEmail, r.BookkeeperEmail)
	s.OwnerName = applyOptional(s.OwnerName, r.OwnerName)
	s.OwnerEmail = applyOptional(s.OwnerEmail, r.OwnerEmail)
	if r.HalfSickCutoff != nil {
		s.HalfSickCutoff = *r.HalfSickCutoff
	}
	if r.Timezone != nil {
		s.Timezone = *r.Timezone
	}
	if r.MissingClockOutAlerts != nil {
		s.MissingClockOutAlerts = *r.MissingClockOutAlerts
	}
	return s
}

func applyOptional(current, update *string) *string {
	if update == nil {
		return current
	}
	v := strings.TrimSpace(*update)
	if v == "" {
		return nil
	}
	return &v
}

type SettingsResponse struct {
	CompanyName           string  `json:"company_name"`
	LogoURL               *string `json:"logo_url,omitempty"`
	BookkeeperEmail       *string `json:"bookkeeper_email,omitempty"`
	OwnerName             *string `json:"owner_name,omitempty"`
	OwnerEmail            *string `json:"owner_email,omitempty"`
	HalfSickCutoff        string  `json:"half_sick_cutoff"`
	Timezone              string  `json:"timezone"`
	MissingClockOutAlerts bool    `json:"missing_clock_out_alerts"`
}

func NewSettingsResponse(s AppSettings) SettingsResponse {
	tz := s.Timezone
	if tz == "" {
		tz = "UTC"
	}
	return SettingsResponse{
		CompanyName:           s.CompanyName,
		LogoURL:               s.LogoURL,
		BookkeeperEmail:       s.BookkeeperEmail,
		OwnerName:             s.OwnerName,
		OwnerEmail:            s.OwnerEmail,
		HalfSickCutoff:        s.Cutoff(),
		Timezone:              tz,
		MissingClockOutAlerts: s.MissingClockOutAlerts,
	}
}
