package export

import (
	"fmt"

	"github.com/punchcard-hq/punchcard-backend/internal/domain/report"
	"github.com/punchcard-hq/punchcard-backend/internal/pkg/timecalc"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName = "Payroll"
	headerRow = 4
)

// XLSX writes one row per employee below a title block, followed by a totals row.
// Minutes and money are numeric cells so the sheet can be summed.
func XLSX(r report.PeriodReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	cells := map[string]any{
		"A1": fmt.Sprintf("%s payroll summary", r.CompanyName),
		"A2": "Period: " + r.Period.Label(),
		"A3": "Generated: " + r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"),
	}
	for cell, v := range cells {
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", cell, err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", title); err != nil {
		return nil, fmt.Errorf("failed to style title: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := setRow(f, headerRow, header); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(sheetName, "A4", fmt.Sprintf("%s%d", lastCol, headerRow), bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	rowIdx := headerRow
	for _, s := range r.Summaries {
		rowIdx++
		if err := setRow(f, rowIdx, xlsxValues(s)); err != nil {
			return nil, err
		}
	}

	rowIdx++
	totals := []any{"Total", "", "", "", timecalc.FormatDuration(r.TotalMinutes), r.TotalMinutes, "", "", "", r.TotalPay.InexactFloat64(), ""}
	if err := setRow(f, rowIdx, totals); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowIdx), fmt.Sprintf("%s%d", lastCol, rowIdx), bold); err != nil {
		return nil, fmt.Errorf("failed to style totals: %w", err)
	}

	if err := f.SetColWidth(sheetName, "A", "A", 28); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", lastCol, 14); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func xlsxValues(s report.PeriodSummary) []any {
	text := row(s)
	var rate any = ""
	if s.HourlyRate != nil {
		rate = s.HourlyRate.InexactFloat64()
	}
	return []any{
		text[0], text[1], text[2],
		rate,
		text[4],
		s.TotalMinutes,
		s.DaysWorked,
		s.SickDays,
		s.VacationDays,
		s.TotalPay.InexactFloat64(),
		text[10],
	}
}
