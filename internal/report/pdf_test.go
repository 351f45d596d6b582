package report

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

func testPDFRenderer() *PDFRenderer {
	return NewPDFRenderer(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithCompression(false),
		WithClock(func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }),
	)
}

func TestPDFRenderer_EmptyYear(t *testing.T) {
	r := testPDFRenderer()
	year := 2030
	rep := Aggregate(scenarioRecords(), &year)

	if pages := r.build(rep).PageCount(); pages != 1 {
		t.Errorf("pages = %d, want 1", pages)
	}

	out, err := r.Render(rep)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
	for _, want := range []string{"Fuel report 2030", NoRecordsNotice} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("PDF missing %q", want)
		}
	}
	if bytes.Contains(out, []byte("Summary")) {
		t.Error("empty report must not have a summary page")
	}
}

func TestPDFRenderer_WithRecords(t *testing.T) {
	r := testPDFRenderer()
	rep := Aggregate(scenarioRecords(), nil)

	// one page per month plus the summary page
	if pages := r.build(rep).PageCount(); pages != len(rep.Months)+1 {
		t.Errorf("pages = %d, want %d", pages, len(rep.Months)+1)
	}

	out, err := r.Render(rep)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"Fuel report", "February 2025", "January 2025", "Summary", "Grand total", "187.50", "1.500", "15/01/2025", "Generated on 17/10/2026"} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("PDF missing %q", want)
		}
	}
	if bytes.Contains(out, []byte(NoRecordsNotice)) {
		t.Error("non-empty report must not carry the empty notice")
	}
}

func TestPDFRenderer_ZeroValues(t *testing.T) {
	r := testPDFRenderer()
	rep := Aggregate([]*entity.Receipt{rec(1, "2025-06-01", 0, 0)}, nil)

	out, err := r.Render(rep)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Contains(out, []byte("0.000")) || !bytes.Contains(out, []byte("0.00")) {
		t.Error("zero amounts should render as 0.00 / 0.000")
	}
}

func TestPDFRenderer_Filename(t *testing.T) {
	r := testPDFRenderer()
	year := 2025
	if got := r.Filename(&year); got != "fuel_report_2025.pdf" {
		t.Errorf("Filename = %q", got)
	}
	if got := r.Filename(nil); got != "fuel_report.pdf" {
		t.Errorf("Filename = %q", got)
	}
}
