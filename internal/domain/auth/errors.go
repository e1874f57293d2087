package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountArchived     = errors.New("account is archived")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrRefreshTokenMissing = errors.New("refresh token not found in cookie or body")

	// Role gates
	ErrAdminRequired       = errors.New("admin access required")
	ErrReportAccess        = errors.New("admin or bookkeeper access required")
	ErrWriteAccessRequired = errors.New("bookkeepers have read-only access")
)
