package auth

import (
	"strings"

	"github.com/punchcard-hq/punchcard-backend/internal/pkg/validator"
)

const minPasswordLength = 8

// RegisterRequest creates a tenant together with its owner admin.
type RegisterRequest struct {
	CompanyName     string `json:"company_name"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Timezone        string `json:"timezone,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	r.CompanyName = strings.TrimSpace(r.CompanyName)
	if validator.IsEmpty(r.CompanyName) {
		errs.Add("company_name", "company_name is required")
	} else if len(r.CompanyName) > 255 {
		errs.Add("company_name", "company_name must not exceed 255 characters")
	}

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	validateEmail(r.Email, &errs)
	validatePassword(r.Password, r.ConfirmPassword, &errs)

	if r.Timezone != "" && !validator.IsValidTimezone(r.Timezone) {
		errs.Add("timezone", "timezone must be a valid IANA zone name")
	}

	return errs.OrNil()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	validateEmail(r.Email, &errs)
	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	}

	return errs.OrNil()
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RefreshToken) {
		errs.Add("refresh_token", "refresh_token is required")
	}

	return errs.OrNil()
}

// AcceptInvitationRequest sets the password of an invited employee.
type AcceptInvitationRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *AcceptInvitationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Token) {
		errs.Add("token", "token is required")
	} else if !validator.IsValidUUID(r.Token) {
		errs.Add("token", "token must be a valid UUID")
	}
	validatePassword(r.Password, r.ConfirmPassword, &errs)

	return errs.OrNil()
}

func validateEmail(email string, errs *validator.ValidationErrors) {
	if validator.IsEmpty(email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(email) {
		errs.Add("email", "email format is invalid")
	}
}

func validatePassword(password, confirm string, errs *validator.ValidationErrors) {
	if validator.IsEmpty(password) {
		errs.Add("password", "password is required")
		return
	}
	if len(password) < minPasswordLength {
		errs.Add("password", "password must be at least 8 characters long")
	}
	// bcrypt ignores input beyond 72 bytes
	if len(password) > 72 {
		errs.Add("password", "password must not exceed 72 characters")
	}
	if password != confirm {
		errs.Add("confirm_password", "confirm_password must match password")
	}
}

type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
	EmployeeID            string `json:"employee_id"`
	CompanyID             string `json:"company_id"`
	Role                  string `json:"role"`
}
