package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/auth"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/company"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/invitation"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/report"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/settings"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/timeentry"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Entry validation failures carry the user-facing message
	if timeentry.IsValidationError(err) {
		UnprocessableEntity(w, err.Error())
		return
	}

	switch {
	// Auth and tenancy
	case errors.Is(err, jwt.ErrMissingClaims), errors.Is(err, jwt.ErrWrongTokenType):
		Unauthorized(w, "Invalid access token")
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Token invalid or expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrRefreshTokenMissing):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAccountArchived),
		errors.Is(err, auth.ErrAdminRequired),
		errors.Is(err, auth.ErrReportAccess),
		errors.Is(err, auth.ErrWriteAccessRequired):
		Forbidden(w, err.Error())
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, company.ErrInvalidCompanyName):
		UnprocessableEntity(w, err.Error())

	// Employees and invitations
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, employee.ErrEmployeeAlreadyActive),
		errors.Is(err, employee.ErrEmployeeAlreadyInactive),
		errors.Is(err, employee.ErrInvitationAccepted),
		errors.Is(err, invitation.ErrAlreadyAccepted):
		Conflict(w, err.Error())
	case errors.Is(err, employee.ErrCannotArchiveSelf), errors.Is(err, employee.ErrCannotDemoteSelf):
		Forbidden(w, err.Error())
	case errors.Is(err, employee.ErrAdminAndBookkeeper),
		errors.Is(err, employee.ErrNoEmail),
		errors.Is(err, invitation.ErrExpired):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, invitation.ErrNotFound):
		NotFound(w, "Invitation not found")

	// Time entries
	case errors.Is(err, timeentry.ErrTimeEntryNotFound):
		NotFound(w, "Time entry not found")
	case errors.Is(err, timeentry.ErrTimeEntryExists),
		errors.Is(err, timeentry.ErrActionNotAllowed),
		errors.Is(err, timeentry.ErrBlockedByPastEntry),
		errors.Is(err, timeentry.ErrAlreadyClockedIn),
		errors.Is(err, timeentry.ErrNotClockedIn),
		errors.Is(err, timeentry.ErrNoOpenBreak),
		errors.Is(err, timeentry.ErrNoChangeRequest),
		errors.Is(err, timeentry.ErrChangeRequestPending),
		errors.Is(err, timeentry.ErrNoVacationRequest),
		errors.Is(err, timeentry.ErrVacationRequestPending),
		errors.Is(err, timeentry.ErrVacationAlreadyGranted),
		errors.Is(err, timeentry.ErrDayAlreadyHasWorkRecord):
		Conflict(w, err.Error())
	case errors.Is(err, timeentry.ErrHalfSickBeforeCutoff),
		errors.Is(err, timeentry.ErrFutureDate),
		errors.Is(err, timeentry.ErrInvalidOffDayKind),
		errors.Is(err, timeentry.ErrEmptyChangeRequest),
		errors.Is(err, timeentry.ErrVacationDaysExhausted),
		errors.Is(err, timeentry.ErrVacationInPast):
		UnprocessableEntity(w, err.Error())

	// Settings and reports
	case errors.Is(err, settings.ErrSettingsNotFound):
		NotFound(w, "Settings not found")
	case errors.Is(err, settings.ErrInvalidTimezone),
		errors.Is(err, settings.ErrInvalidCutoff),
		errors.Is(err, report.ErrInvalidDateRange),
		errors.Is(err, report.ErrPeriodTooLong),
		errors.Is(err, report.ErrNoRecipient),
		errors.Is(err, report.ErrUnsupportedFormat):
		UnprocessableEntity(w, err.Error())

	// Notifications
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrNoRecipients):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, notification.ErrDeliveryFailed):
		BadGateway(w, "The notification could not be delivered")

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
