package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/notification"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/report"
	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/response"
)

// NotifyHandler exposes one POST endpoint per notification type.
type NotifyHandler interface {
	ChangeRequest(w http.ResponseWriter, r *http.Request)
	ChangeRequestResolved(w http.ResponseWriter, r *http.Request)
	Invitation(w http.ResponseWriter, r *http.Request)
	PeriodReport(w http.ResponseWriter, r *http.Request)
	MissingClockOut(w http.ResponseWriter, r *http.Request)
}

type notifyHandlerImpl struct {
	notifyService notification.NotifyService
	reportService report.ReportService
}

func NewNotifyHandler(notifyService notification.NotifyService, reportService report.ReportService) NotifyHandler {
	return &notifyHandlerImpl{
		notifyService: notifyService,
		reportService: reportService,
	}
}

type validatable interface {
	Validate() error
}

// decodeNotify reads and validates the body. It writes the error response itself.
func decodeNotify(w http.ResponseWriter, r *http.Request, op string, req validatable) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return false
	}
	return true
}

func respondNotify(w http.ResponseWriter, op string, result notification.NotifyResponse, err error) {
	if err != nil {
		slog.Error(op+" delivery error", "error", err)
		response.HandleError(w, err)
		return
	}
	slog.Info("Notification sent", "type", op, "message_id", result.MessageID)
	response.SuccessWithMessage(w, "Notification sent", result)
}

// ChangeRequest implements NotifyHandler.
func (h *notifyHandlerImpl) ChangeRequest(w http.ResponseWriter, r *http.Request) {
	var req notification.NotifyChangeRequestRequest
	if !decodeNotify(w, r, "NotifyChangeRequest", &req) {
		return
	}
	result, err := h.notifyService.ChangeRequest(r.Context(), req)
	respondNotify(w, "change_request", result, err)
}

// ChangeRequestResolved implements NotifyHandler.
func (h *notifyHandlerImpl) ChangeRequestResolved(w http.ResponseWriter, r *http.Request) {
	var req notification.NotifyResolvedRequest
	if !decodeNotify(w, r, "NotifyChangeRequestResolved", &req) {
		return
	}
	result, err := h.notifyService.ChangeRequestResolved(r.Context(), req)
	respondNotify(w, "change_request_resolved", result, err)
}

// Invitation implements NotifyHandler.
func (h *notifyHandlerImpl) Invitation(w http.ResponseWriter, r *http.Request) {
	var req notification.NotifyInvitationRequest
	if !decodeNotify(w, r, "NotifyInvitation", &req) {
		return
	}
	result, err := h.notifyService.Invitation(r.Context(), req)
	respondNotify(w, "invitation", result, err)
}

// PeriodReport builds the report for the caller's tenant and mails it.
func (h *notifyHandlerImpl) PeriodReport(w http.ResponseWriter, r *http.Request) {
	var req report.SendRequest
	if !decodeNotify(w, r, "NotifyPeriodReport", &req) {
		return
	}
	sent, err := h.reportService.Send(r.Context(), req)
	respondNotify(w, "period_report", notification.NotifyResponse{MessageID: sent.MessageID}, err)
}

// MissingClockOut implements NotifyHandler.
func (h *notifyHandlerImpl) MissingClockOut(w http.ResponseWriter, r *http.Request) {
	var req notification.NotifyMissingClockOutRequest
	if !decodeNotify(w, r, "NotifyMissingClockOut", &req) {
		return
	}
	result, err := h.notifyService.MissingClockOut(r.Context(), req)
	respondNotify(w, "missing_clock_out", result, err)
}
