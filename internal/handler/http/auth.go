package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/auth"
	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/response"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/jwt"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	AcceptInvitation(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService  jwt.Service
	authService auth.AuthService
}

func NewAuthHandler(jwtService jwt.Service, authService auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{
		jwtService:  jwtService,
		authService: authService,
	}
}

// Register implements AuthHandler.
func (a *AuthHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq auth.RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		slog.Error("Register decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := registerReq.Validate(); err != nil {
		slog.Error("Register validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	tokenResponse, err := a.authService.Register(r.Context(), registerReq, sessionFromRequest(r))
	if err != nil {
		slog.Error("Register service error", "error", err)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, a.jwtService.RefreshTokenCookie(tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn))
	slog.Info("Company registered", "company_id", tokenResponse.CompanyID)
	response.Created(w, "Company registered successfully", tokenResponse)
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := loginReq.Validate(); err != nil {
		slog.Error("Login validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	tokenResponse, err := a.authService.Login(r.Context(), loginReq, sessionFromRequest(r))
	if err != nil {
		slog.Error("Login service error", "error", err)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, a.jwtService.RefreshTokenCookie(tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn))
	slog.Info("Employee logged in", "employee_id", tokenResponse.EmployeeID)
	response.SuccessWithMessage(w, "Logged in successfully", tokenResponse)
}

// RefreshToken implements AuthHandler.
func (a *AuthHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshTokenReq, ok := readRefreshToken(w, r)
	if !ok {
		return
	}

	tokenResponse, err := a.authService.RefreshToken(r.Context(), refreshTokenReq, sessionFromRequest(r))
	if err != nil {
		slog.Error("Refresh Token service error", "error", err)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, a.jwtService.RefreshTokenCookie(tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn))
	response.SuccessWithMessage(w, "Token refreshed successfully", tokenResponse)
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	refreshTokenReq, ok := readRefreshToken(w, r)
	if !ok {
		return
	}

	if err := a.authService.Logout(r.Context(), refreshTokenReq); err != nil {
		slog.Error("Logout service error", "error", err)
		response.HandleError(w, err)
		return
	}

	cleared := a.jwtService.RefreshTokenCookie("", 0)
	cleared.Expires = time.Unix(0, 0)
	cleared.MaxAge = -1
	http.SetCookie(w, cleared)
	response.SuccessWithMessage(w, "Logged out successfully", nil)
}

// AcceptInvitation implements AuthHandler.
func (a *AuthHandlerImpl) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var acceptReq auth.AcceptInvitationRequest

	if err := json.NewDecoder(r.Body).Decode(&acceptReq); err != nil {
		slog.Error("AcceptInvitation decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := acceptReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	tokenResponse, err := a.authService.AcceptInvitation(r.Context(), acceptReq, sessionFromRequest(r))
	if err != nil {
		slog.Error("AcceptInvitation service error", "error", err)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, a.jwtService.RefreshTokenCookie(tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn))
	slog.Info("Invitation accepted", "employee_id", tokenResponse.EmployeeID)
	response.SuccessWithMessage(w, "Invitation accepted", tokenResponse)
}

// readRefreshToken prefers the cookie and falls back to the JSON body.
func readRefreshToken(w http.ResponseWriter, r *http.Request) (auth.RefreshTokenRequest, bool) {
	var req auth.RefreshTokenRequest

	if cookie, err := r.Cookie(refreshTokenCookieName); err == nil && cookie.Value != "" {
		req.RefreshToken = cookie.Value
		return req, true
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Refresh token decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return req, false
	}
	if req.RefreshToken == "" {
		response.HandleError(w, auth.ErrRefreshTokenMissing)
		return req, false
	}
	return req, true
}
