package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/employee"
	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/response"
)

type EmployeeHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Archive(w http.ResponseWriter, r *http.Request)
	Restore(w http.ResponseWriter, r *http.Request)
	ResendInvitation(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &employeeHandlerImpl{
		employeeService: employeeService,
	}
}

// List implements EmployeeHandler.
func (h *employeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := employee.EmployeeFilter{
		Search:          r.URL.Query().Get("search"),
		IncludeInactive: getBoolQueryParam(r, "include_inactive", false),
		Page:            getIntQueryParam(r, "page", 1),
		Limit:           getIntQueryParam(r, "limit", 50),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	employees, err := h.employeeService.ListEmployees(r.Context(), filter)
	if err != nil {
		slog.Error("ListEmployees service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, employees)
}

// Get implements EmployeeHandler.
func (h *employeeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.employeeService.GetEmployee(r.Context(), id)
	if err != nil {
		slog.Error("GetEmployee service error", "error", err, "id", id)
		response.HandleError(w, err)
		return
	}
	response.Success(w, emp)
}

// Create implements EmployeeHandler.
func (h *employeeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateEmployee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.employeeService.CreateEmployee(r.Context(), req)
	if err != nil {
		slog.Error("CreateEmployee service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Employee created", "employee_id", result.Employee.ID)
	response.Mutation(w, http.StatusCreated, "Employee created", result.Employee, result.Warnings)
}

// Update implements EmployeeHandler.
func (h *employeeHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req employee.UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateEmployee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.employeeService.UpdateEmployee(r.Context(), req)
	if err != nil {
		slog.Error("UpdateEmployee service error", "error", err, "id", req.ID)
		response.HandleError(w, err)
		return
	}
	response.Mutation(w, http.StatusOK, "Employee updated", result.Employee, result.Warnings)
}

// Archive implements EmployeeHandler.
func (h *employeeHandlerImpl) Archive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.employeeService.ArchiveEmployee(r.Context(), id); err != nil {
		slog.Error("ArchiveEmployee service error", "error", err, "id", id)
		response.HandleError(w, err)
		return
	}
	slog.Info("Employee archived", "employee_id", id)
	response.SuccessWithMessage(w, "Employee archived", nil)
}

// Restore implements EmployeeHandler.
func (h *employeeHandlerImpl) Restore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.employeeService.RestoreEmployee(r.Context(), id)
	if err != nil {
		slog.Error("RestoreEmployee service error", "error", err, "id", id)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee restored", emp)
}

// ResendInvitation implements EmployeeHandler.
func (h *employeeHandlerImpl) ResendInvitation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.employeeService.ResendInvitation(r.Context(), id)
	if err != nil {
		slog.Error("ResendInvitation service error", "error", err, "id", id)
		response.HandleError(w, err)
		return
	}
	response.Mutation(w, http.StatusOK, "Invitation sent", result.Employee, result.Warnings)
}
