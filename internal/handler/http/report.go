package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/report"
	"github.com/punchcard-hq/punchcard-backend/internal/handler/http/response"
)

type ReportHandler interface {
	Period(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Send(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func periodFromQuery(r *http.Request) report.PeriodRequest {
	return report.PeriodRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
}

// Period implements ReportHandler.
func (h *reportHandlerImpl) Period(w http.ResponseWriter, r *http.Request) {
	req := periodFromQuery(r)
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.Generate(r.Context(), req)
	if err != nil {
		slog.Error("Generate report service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Export streams the rendered file instead of the JSON envelope.
func (h *reportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	req := report.ExportRequest{
		PeriodRequest: periodFromQuery(r),
		Format:        report.Format(r.URL.Query().Get("format")),
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	file, err := h.reportService.Export(r.Context(), req)
	if err != nil {
		slog.Error("Export report service error", "error", err)
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		slog.Error("Export report write error", "error", err)
	}
}

// Send implements ReportHandler.
func (h *reportHandlerImpl) Send(w http.ResponseWriter, r *http.Request) {
	var req report.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Send report decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.Send(r.Context(), req)
	if err != nil {
		slog.Error("Send report service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Period report sent", "recipient", result.Recipient, "message_id", result.MessageID)
	response.SuccessWithMessage(w, "Report sent", result)
}
