package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/timeentry"
	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/response"
)

// TimeEntryHandler covers the employee's own day and the admin review screens.
type TimeEntryHandler interface {
	Today(w http.ResponseWriter, r *http.Request)
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	ToggleOffDay(w http.ResponseWriter, r *http.Request)
	RequestVacation(w http.ResponseWriter, r *http.Request)
	SubmitChangeRequest(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	VacationBalance(w http.ResponseWriter, r *http.Request)

	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Save(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ApproveChangeRequest(w http.ResponseWriter, r *http.Request)
	DenyChangeRequest(w http.ResponseWriter, r *http.Request)
	ApproveVacation(w http.ResponseWriter, r *http.Request)
	DenyVacation(w http.ResponseWriter, r *http.Request)
}

type timeEntryHandlerImpl struct {
	timeEntryService timeentry.TimeEntryService
}

func NewTimeEntryHandler(timeEntryService timeentry.TimeEntryService) TimeEntryHandler {
	return &timeEntryHandlerImpl{
		timeEntryService: timeEntryService,
	}
}

type mutationFunc func(r *http.Request) (timeentry.MutationResponse, error)

// respondMutation writes the mutation result. Notification warnings ride along with a success status.
func (h *timeEntryHandlerImpl) respondMutation(w http.ResponseWriter, r *http.Request, op string, message string, fn mutationFunc) {
	result, err := fn(r)
	if err != nil {
		slog.Error(op+" service error", "error", err)
		response.HandleError(w, err)
		return
	}
	if len(result.Warnings) > 0 {
		slog.Warn(op+" completed with notification warnings", "warnings", result.Warnings)
	}
	response.Mutation(w, http.StatusOK, message, result, result.Warnings)
}

// Today implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	today, err := h.timeEntryService.Today(r.Context())
	if err != nil {
		slog.Error("Today service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, today)
}

// ClockIn implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, r, "ClockIn", "Clocked in", func(r *http.Request) (timeentry.MutationResponse, error) {
		return h.timeEntryService.ClockIn(r.Context())
	})
}

// ClockOut implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, r, "ClockOut", "Clocked out", func(r *http.Request) (timeentry.MutationResponse, error) {
		return h.timeEntryService.ClockOut(r.Context())
	})
}

// StartBreak implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, r, "StartBreak", "Break started", func(r *http.Request) (timeentry.MutationResponse, error) {
		return h.timeEntryService.StartBreak(r.Context())
	})
}

// EndBreak implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, r, "EndBreak", "Break ended", func(r *http.Request) (timeentry.MutationResponse, error) {
		return h.timeEntryService.EndBreak(r.Context())
	})
}

// ToggleOffDay implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) ToggleOffDay(w http.ResponseWriter, r *http.Request) {
	var req timeentry.ToggleOffDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ToggleOffDay decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	h.respondMutation(w, r, "ToggleOffDay", "Day updated", func(r *http.Request) (timeentry.MutationResponse, error) {
		return h.timeEntryService.ToggleOffDay(r.Context(), req)
	})
}

// RequestVacation implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) RequestVacation(w http.ResponseWriter, r *http.Request) {
	var req timeentry.VacationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RequestVacation decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeEntryService.RequestVacation(r.Context(), req)
	if err != nil {
		slog.Error("RequestVacation service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Mutation(w, http.StatusCreated, "Vacation requested", result, result.Warnings)
}

// SubmitChangeRequest implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) SubmitChangeRequest(w http.ResponseWriter, r *http.Request) {
	var req timeentry.ChangeRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SubmitChangeRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeEntryService.SubmitChangeRequest(r.Context(), req)
	if err != nil {
		slog.Error("SubmitChangeRequest service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Mutation(w, http.StatusCreated, "Change request submitted", result, result.Warnings)
}

// ListMine implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	filter := timeentry.MyTimeEntryFilter{
		StartDate: getOptionalQueryParam(r, "start_date"),
		EndDate:   getOptionalQueryParam(r, "end_date"),
		Page:      getIntQueryParam(r, "page", 1),
		Limit:     getIntQueryParam(r, "limit", 31),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	entries, err := h.timeEntryService.ListMine(r.Context(), filter)
	if err != nil {
		slog.Error("ListMine service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, entries)
}

// VacationBalance implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) VacationBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.timeEntryService.VacationBalance(r.Context())
	if err != nil {
		slog.Error("VacationBalance service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, balance)
}

// List implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := timeentry.TimeEntryFilter{
		EmployeeID:  getOptionalQueryParam(r, "employee_id"),
		StartDate:   getOptionalQueryParam(r, "start_date"),
		EndDate:     getOptionalQueryParam(r, "end_date"),
		PendingOnly: getBoolQueryParam(r, "pending_only", false),
		Page:        getIntQueryParam(r, "page", 1),
		Limit:       getIntQueryParam(r, "limit", 31),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	entries, err := h.timeEntryService.List(r.Context(), filter)
	if err != nil {
		slog.Error("List time entries service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, entries)
}

// Get implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.timeEntryService.Get(r.Context(), id)
	if err != nil {
		slog.Error("Get time entry service error", "error", err, "id", id)
		response.HandleError(w, err)
		return
	}
	response.Success(w, detail)
}

// Create implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req timeentry.AdminCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create time entry decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeEntryService.AdminCreate(r.Context(), req)
	if err != nil {
		slog.Error("Create time entry service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Mutation(w, http.StatusCreated, "Time entry created", result, result.Warnings)
}

// Save implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) Save(w http.ResponseWriter, r *http.Request) {
	var req timeentry.AdminSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Save time entry decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	h.respondMutation(w, r, "Save time entry", "Time entry saved", func(r *http.Request) (timeentry.MutationResponse, error) {
		return h.timeEntryService.AdminSave(r.Context(), req)
	})
}

// Delete implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.timeEntryService.Delete(r.Context(), id); err != nil {
		slog.Error("Delete time entry service error", "error", err, "id", id)
		response.HandleError(w, err)
		return
	}
	slog.Info("Time entry deleted", "id", id)
	response.SuccessWithMessage(w, "Time entry deleted", nil)
}

// ApproveChangeRequest implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) ApproveChangeRequest(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "ApproveChangeRequest", "Change request approved", h.timeEntryService.ApproveChangeRequest)
}

// DenyChangeRequest implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) DenyChangeRequest(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "DenyChangeRequest", "Change request denied", h.timeEntryService.DenyChangeRequest)
}

// ApproveVacation implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) ApproveVacation(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "ApproveVacation", "Vacation approved", h.timeEntryService.ApproveVacation)
}

// DenyVacation implements TimeEntryHandler.
func (h *timeEntryHandlerImpl) DenyVacation(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "DenyVacation", "Vacation denied", h.timeEntryService.DenyVacation)
}

// resolve accepts an optional body carrying the admin note.
func (h *timeEntryHandlerImpl) resolve(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	message string,
	fn func(ctx context.Context, req timeentry.ResolveRequest) (timeentry.MutationResponse, error),
) {
	var req timeentry.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	h.respondMutation(w, r, op, message, func(r *http.Request) (timeentry.MutationResponse, error) {
		return fn(r.Context(), req)
	})
}
