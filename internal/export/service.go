package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
	"github.com/joseph-ayodele/fuel-tracker/internal/report"
)

const (
	receiptsSheet = "Receipts"
	monthlySheet  = "Monthly"
)

// XLSXRenderer writes a report as a workbook with one row per receipt and a
// monthly overview sheet.
type XLSXRenderer struct {
	logger *slog.Logger
}

var _ report.DocumentRenderer = (*XLSXRenderer)(nil)

func NewXLSXRenderer(logger *slog.Logger) *XLSXRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXRenderer{logger: logger}
}

func (s *XLSXRenderer) Filename(year *int) string {
	return report.BaseFilename(year) + ".xlsx"
}

// Render returns the XLSX workbook bytes. Receipts are listed oldest first.
func (s *XLSXRenderer) Render(rep report.Report) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()

	// the default sheet becomes the receipts sheet
	if err := f.SetSheetName("Sheet1", receiptsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(monthlySheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	rows, err := writeReceipts(f, rep)
	if err != nil {
		return nil, err
	}
	if err := writeMonthly(f, rep); err != nil {
		return nil, err
	}

	activeIndex, _ := f.GetSheetIndex(receiptsSheet)
	f.SetActiveSheet(activeIndex)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", rows,
		"months", len(rep.Months),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeReceipts(f *excelize.File, rep report.Report) (int, error) {
	headers := []string{"ID", "Date", "Fuel type", "Liters", "Price/L", "VAT", "Total", "Recorded at"}
	if err := writeRow(f, receiptsSheet, 1, headers); err != nil {
		return 0, err
	}

	row := 2
	// months are newest first; walk them backwards for chronological rows
	for i := len(rep.Months) - 1; i >= 0; i-- {
		for _, r := range rep.Months[i].Records {
			if err := writeRow(f, receiptsSheet, row, receiptRow(r)); err != nil {
				return 0, err
			}
			row++
		}
	}

	_ = f.SetColWidth(receiptsSheet, "A", "A", 6)
	_ = f.SetColWidth(receiptsSheet, "B", "B", 12)
	_ = f.SetColWidth(receiptsSheet, "C", "C", 16)
	_ = f.SetColWidth(receiptsSheet, "D", "G", 11)
	_ = f.SetColWidth(receiptsSheet, "H", "H", 22)
	return row - 2, nil
}

func receiptRow(r *entity.Receipt) []any {
	return []any{
		r.ID,
		r.Date.String(),
		truncate(r.FuelType, 40),
		r.Liters,
		r.PricePerLiter,
		r.VAT,
		r.TotalPrice,
		r.Timestamp.Format(time.RFC3339),
	}
}

func writeMonthly(f *excelize.File, rep report.Report) error {
	headers := []string{"Month", "Receipts", "Liters", "VAT", "Total", "Avg price/L"}
	if err := writeRow(f, monthlySheet, 1, headers); err != nil {
		return err
	}

	row := 2
	for _, m := range rep.Months {
		values := []any{
			m.Label,
			m.Count,
			m.Liters.InexactFloat64(),
			m.VAT.InexactFloat64(),
			m.TotalPrice.InexactFloat64(),
			report.AveragePrice(m.TotalPrice, m.Liters).InexactFloat64(),
		}
		if err := writeRow(f, monthlySheet, row, values); err != nil {
			return err
		}
		row++
	}

	t := rep.Totals
	total := []any{
		"Total",
		t.Count,
		t.Liters.InexactFloat64(),
		t.VAT.InexactFloat64(),
		t.TotalPrice.InexactFloat64(),
		t.AvgPricePerLiter.InexactFloat64(),
	}
	if err := writeRow(f, monthlySheet, row, total); err != nil {
		return err
	}

	_ = f.SetColWidth(monthlySheet, "A", "A", 18)
	_ = f.SetColWidth(monthlySheet, "B", "F", 12)
	return nil
}

func writeRow[T any](f *excelize.File, sheet string, row int, values []T) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
