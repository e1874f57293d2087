package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/settings"
	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/response"
)

type SettingsHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type settingsHandlerImpl struct {
	settingsService settings.SettingsService
}

func NewSettingsHandler(settingsService settings.SettingsService) SettingsHandler {
	return &settingsHandlerImpl{settingsService: settingsService}
}

// Get implements SettingsHandler.
func (h *settingsHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.settingsService.Get(r.Context())
	if err != nil {
		slog.Error("Get settings service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, s)
}

// Update implements SettingsHandler.
func (h *settingsHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req settings.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update settings decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	s, err := h.settingsService.Update(r.Context(), req)
	if err != nil {
		slog.Error("Update settings service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Settings updated", s)
}
