package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

// NoRecordsNotice is printed under the title when nothing is in scope.
const NoRecordsNotice = "No records found."

const fontFamily = "Helvetica"

var (
	tableHeaders = []string{"Date", "Fuel type", "Liters", "Price/L", "VAT", "Total"}
	tableWidths  = []float64{30, 46, 26, 26, 28, 34}
)

// PDFRenderer lays out a report as an A4 document: one page per month, most
// recent first, followed by a summary page.
type PDFRenderer struct {
	now      Clock
	compress bool
	logger   *slog.Logger
}

var _ DocumentRenderer = (*PDFRenderer)(nil)

type PDFOption func(*PDFRenderer)

// WithClock sets the clock used for the generation date.
func WithClock(now Clock) PDFOption {
	return func(r *PDFRenderer) { r.now = now }
}

// WithCompression toggles stream compression.
func WithCompression(on bool) PDFOption {
	return func(r *PDFRenderer) { r.compress = on }
}

func NewPDFRenderer(logger *slog.Logger, opts ...PDFOption) *PDFRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	r := &PDFRenderer{now: time.Now, compress: true, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *PDFRenderer) Filename(year *int) string {
	return BaseFilename(year) + ".pdf"
}

func (r *PDFRenderer) Render(rep Report) ([]byte, error) {
	start := time.Now()

	pdf := r.build(rep)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf layout: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf write: %w", err)
	}

	r.logger.Info("report.pdf.ok",
		"months", len(rep.Months),
		"records", rep.Totals.Count,
		"pages", pdf.PageCount(),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (r *PDFRenderer) build(rep Report) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 18)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := Title(rep.Year)
	pdf.SetTitle(title, true)
	pdf.SetCreator("fuel-tracker", true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeTitle(pdf, tr, title, r.now())

	if rep.Empty() {
		pdf.Ln(10)
		pdf.SetFont(fontFamily, "", 12)
		pdf.CellFormat(0, 10, tr(NoRecordsNotice), "", 1, "C", false, 0, "")
		return pdf
	}

	for i, m := range rep.Months {
		if i > 0 {
			pdf.AddPage()
		}
		writeMonth(pdf, tr, m)
	}

	pdf.AddPage()
	writeSummary(pdf, tr, rep)
	return pdf
}

func writeTitle(pdf *fpdf.Fpdf, tr func(string) string, title string, generated time.Time) {
	pdf.SetFont(fontFamily, "B", 20)
	pdf.SetTextColor(20, 40, 80)
	pdf.CellFormat(0, 12, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 6, tr("Generated on "+generated.Format(displayDate)), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)
}

func writeMonth(pdf *fpdf.Fpdf, tr func(string) string, m MonthlyAggregate) {
	pdf.SetFont(fontFamily, "B", 14)
	pdf.SetTextColor(20, 40, 80)
	pdf.CellFormat(0, 10, tr(m.Label), "B", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(3)

	writeTableHeader(pdf, tr)

	pdf.SetFont(fontFamily, "", 10)
	for i, rec := range m.Records {
		fill := i%2 == 1
		pdf.SetFillColor(245, 247, 250)
		writeRecordRow(pdf, tr, rec, fill)
	}

	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(220, 228, 240)
	cells := []string{
		fmt.Sprintf("Total (%d)", m.Count),
		"",
		m.Liters.StringFixed(2) + " L",
		"",
		m.VAT.StringFixed(2) + " €",
		m.TotalPrice.StringFixed(2) + " €",
	}
	for i, c := range cells {
		align := "R"
		if i < 2 {
			align = "L"
		}
		pdf.CellFormat(tableWidths[i], 8, tr(c), "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)
}

func writeTableHeader(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(40, 70, 120)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range tableHeaders {
		pdf.CellFormat(tableWidths[i], 8, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

func writeRecordRow(pdf *fpdf.Fpdf, tr func(string) string, rec *entity.Receipt, fill bool) {
	cells := []string{
		rec.Date.Format(displayDate),
		truncate(rec.FuelType, 22),
		fmt.Sprintf("%.2f L", rec.Liters),
		fmt.Sprintf("%.3f €", rec.PricePerLiter),
		fmt.Sprintf("%.2f €", rec.VAT),
		fmt.Sprintf("%.2f €", rec.TotalPrice),
	}
	for i, c := range cells {
		align := "R"
		if i < 2 {
			align = "L"
		}
		pdf.CellFormat(tableWidths[i], 7, tr(c), "1", 0, align, fill, 0, "")
	}
	pdf.Ln(-1)
}

func writeSummary(pdf *fpdf.Fpdf, tr func(string) string, rep Report) {
	pdf.SetFont(fontFamily, "B", 16)
	pdf.SetTextColor(20, 40, 80)
	pdf.CellFormat(0, 10, tr("Summary"), "B", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	t := rep.Totals
	rows := [][2]string{
		{"Receipts", fmt.Sprintf("%d", t.Count)},
		{"Total liters", t.Liters.StringFixed(2) + " L"},
		{"Average price per liter", t.AvgPricePerLiter.StringFixed(3) + " €"},
		{"Total VAT", t.VAT.StringFixed(2) + " €"},
		{"Grand total", t.TotalPrice.StringFixed(2) + " €"},
	}
	for i, row := range rows {
		style := ""
		if i == len(rows)-1 {
			style = "B"
		}
		pdf.SetFont(fontFamily, style, 12)
		pdf.CellFormat(90, 9, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 9, tr(row[1]), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(0, 8, tr("By month"), "", 1, "L", false, 0, "")

	widths := []float64{50, 25, 35, 40}
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(40, 70, 120)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range []string{"Month", "Receipts", "Liters", "Total"} {
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(fontFamily, "", 10)
	for _, m := range rep.Months {
		pdf.CellFormat(widths[0], 7, tr(m.Label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", m.Count), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(m.Liters.StringFixed(2)+" L"), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, tr(m.TotalPrice.StringFixed(2)+" €"), "1", 1, "R", false, 0, "")
	}
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

