package report

import "context"

// ReportService generates period payroll reports for the caller's tenant
type ReportService interface {
	Generate(ctx context.Context, req PeriodRequest) (PeriodReportResponse, error)

	// Export renders the report as an xlsx or pdf file
	Export(ctx context.Context, req ExportRequest) (ExportFile, error)

	// Send emails the report with the xlsx attached to the bookkeeper or an explicit recipient
	Send(ctx context.Context, req SendRequest) (SendResponse, error)
}

// Renderer turns a report into a downloadable file.
type Renderer interface {
	Render(r PeriodReport, format Format) (ExportFile, error)
}
