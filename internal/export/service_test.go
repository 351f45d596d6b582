package export

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
	"github.com/joseph-ayodele/fuel-tracker/internal/report"
)

func receipt(id int, y int, m time.Month, d int, liters, total float64) *entity.Receipt {
	return &entity.Receipt{
		ID:            id,
		Date:          entity.NewDate(y, m, d),
		Liters:        liters,
		PricePerLiter: 1.5,
		VAT:           total / 6,
		TotalPrice:    total,
		FuelType:      "DIESEL",
		Timestamp:     entity.Timestamp{Time: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)},
	}
}

func TestXLSXRenderer_Render(t *testing.T) {
	records := []*entity.Receipt{
		receipt(1, 2025, time.January, 15, 40, 60),
		receipt(2, 2025, time.January, 20, 35, 52.5),
		receipt(3, 2025, time.February, 1, 50, 75),
		receipt(4, 2024, time.December, 30, 20, 30),
	}
	year := 2025
	rep := report.Aggregate(records, &year)

	r := NewXLSXRenderer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	out, err := r.Render(rep)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Receipts")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("receipt rows = %d, want header + 3", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][1] != "Date" {
		t.Errorf("header = %v", rows[0])
	}
	wantDates := []string{"2025-01-15", "2025-01-20", "2025-02-01"}
	for i, want := range wantDates {
		if rows[i+1][1] != want {
			t.Errorf("row %d date = %q, want %q", i+1, rows[i+1][1], want)
		}
	}

	monthly, err := f.GetRows("Monthly")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(monthly) != 4 {
		t.Fatalf("monthly rows = %d, want header + 2 months + total", len(monthly))
	}
	if monthly[1][0] != "February 2025" || monthly[2][0] != "January 2025" || monthly[3][0] != "Total" {
		t.Errorf("monthly labels = %v / %v / %v", monthly[1][0], monthly[2][0], monthly[3][0])
	}
	if monthly[2][2] != "75" || monthly[2][4] != "112.5" {
		t.Errorf("january liters/total = %s / %s", monthly[2][2], monthly[2][4])
	}
}

func TestXLSXRenderer_Empty(t *testing.T) {
	r := NewXLSXRenderer(nil)
	out, err := r.Render(report.Aggregate(nil, nil))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows("Receipts")
	if len(rows) != 1 {
		t.Errorf("rows = %d, want header only", len(rows))
	}
	if got := r.Filename(nil); got != "fuel_report.xlsx" {
		t.Errorf("Filename = %q", got)
	}
}
