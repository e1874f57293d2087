package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/punchcard-hq/punchcard-backend/internal/domain/report"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
)

// PDF column widths in mm on landscape A4. Minutes and Issues are left out.
var pdfColumns = []struct {
	index int
	width float64
	align string
}{
	{0, 55, "L"}, // Employee
	{1, 35, "L"}, // Role
	{2, 22, "L"}, // Status
	{3, 25, "R"}, // Hourly rate
	{4, 25, "R"}, // Hours
	{6, 25, "R"}, // Days worked
	{7, 22, "R"}, // Sick days
	{8, 28, "R"}, // Vacation days
	{9, 30, "R"}, // Pay
}

func PDF(r report.PeriodReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s payroll %s", r.CompanyName, r.Period.Label()), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("%s payroll summary", r.CompanyName)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, "Period: "+r.Period.Label())
	pdf.Ln(7)
	pdf.Cell(0, 7, "Generated: "+r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, 8, columns[c.index], "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, s := range r.Summaries {
		values := row(s)
		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, 7, tr(values[c.index]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	for _, c := range pdfColumns {
		text := ""
		switch c.index {
		case 0:
			text = "Total"
		case 4:
			text = timecalc.FormatDuration(r.TotalMinutes)
		case 9:
			text = report.FormatMoney(r.TotalPay)
		}
		pdf.CellFormat(c.width, 8, text, "1", 0, c.align, false, 0, "")
	}
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
