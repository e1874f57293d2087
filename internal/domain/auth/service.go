package auth

import (
	"context"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest, session SessionTrackingRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest, session SessionTrackingRequest) (TokenResponse, error)

	// RefreshToken rotates the refresh token: the presented one is revoked and a new pair issued
	RefreshToken(ctx context.Context, req RefreshTokenRequest, session SessionTrackingRequest) (TokenResponse, error)
	Logout(ctx context.Context, req RefreshTokenRequest) error

	// AcceptInvitation sets the password of an invited employee and logs them in
	AcceptInvitation(ctx context.Context, req AcceptInvitationRequest, session SessionTrackingRequest) (TokenResponse, error)
}

// RefreshTokenRepository stores refresh tokens as hashes.
type RefreshTokenRepository interface {
	CreateRefreshToken(ctx context.Context, employeeID string, token string, expiresAt int64, session SessionTrackingRequest) error
	IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAllForEmployee(ctx context.Context, employeeID string) error
}
