package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() Clock {
	ts := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func sampleFields(day int) entity.ReceiptFields {
	return entity.ReceiptFields{
		Date:          entity.NewDate(2025, 1, day),
		Liters:        40,
		PricePerLiter: 1.85,
		VAT:           12.33,
		TotalPrice:    74,
		FuelType:      "SP95",
	}
}

func TestJSONStore_LoadMissingFile(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "receipts_data.json"), nil, quietLogger())

	records, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", records)
	}
}

func TestJSONStore_AppendAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "receipts_data.json")
	s := NewJSONStore(path, fixedClock(), quietLogger())

	for i := 1; i <= 3; i++ {
		rec, err := s.Append(ctx, sampleFields(i))
		if err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
		if rec.ID != i {
			t.Errorf("Append #%d id = %d", i, rec.ID)
		}
		if !rec.Timestamp.Equal(fixedClock()()) {
			t.Errorf("timestamp = %v", rec.Timestamp)
		}
	}

	// a fresh store instance reads the same file
	records, err := NewJSONStore(path, nil, quietLogger()).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	for i, rec := range records {
		if rec.ID != i+1 {
			t.Errorf("records[%d].ID = %d", i, rec.ID)
		}
		if rec.Date.String() != sampleFields(i+1).Date.String() {
			t.Errorf("records[%d].Date = %s", i, rec.Date)
		}
		if rec.FuelType != "SP95" || rec.TotalPrice != 74 {
			t.Errorf("records[%d] = %+v", i, rec)
		}
	}
}

func TestJSONStore_FileLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "receipts_data.json")
	s := NewJSONStore(path, fixedClock(), quietLogger())

	if _, err := s.Append(ctx, sampleFields(15)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "[\n  {\n    \"id\": 1,") {
		t.Errorf("unexpected layout:\n%s", data)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []string{"id", "date", "liters", "price_per_liter", "vat", "total_price", "fuel_type", "timestamp"}
	for _, k := range want {
		if _, ok := raw[0][k]; !ok {
			t.Errorf("missing key %q", k)
		}
	}
	if raw[0]["date"] != "2025-01-15" {
		t.Errorf("date = %v", raw[0]["date"])
	}
	if raw[0]["timestamp"] != "2025-01-15T10:30:00Z" {
		t.Errorf("timestamp = %v", raw[0]["timestamp"])
	}

	// no temp files left behind
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the store file, found %d entries", len(entries))
	}
}

func TestJSONStore_LoadLegacyFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "receipts_data.json")
	legacy := `[
  {
    "date": "2025-01-15",
    "liters": 40.12,
    "price_per_liter": 1.849,
    "vat": 12.36,
    "total_price": 74.18,
    "fuel_type": "SP95-E10",
    "id": 1,
    "timestamp": "2025-01-15T10:20:30.123456"
  }
]`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := NewJSONStore(path, fixedClock(), quietLogger())
	records, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}
	want := time.Date(2025, 1, 15, 10, 20, 30, 123456000, time.Local)
	if !records[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", records[0].Timestamp, want)
	}
	if records[0].FuelType != "SP95-E10" || records[0].TotalPrice != 74.18 {
		t.Errorf("record = %+v", records[0])
	}

	// appending rewrites the legacy record in the current layout
	rec, err := s.Append(ctx, sampleFields(20))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if rec.ID != 2 {
		t.Errorf("id = %d, want 2", rec.ID)
	}
	records, err = NewJSONStore(path, nil, quietLogger()).Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(records) != 2 || !records[0].Timestamp.Equal(want) {
		t.Errorf("records after append = %+v", records)
	}
}

func TestJSONStore_BadTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts_data.json")
	body := `[{"id":1,"date":"2025-01-15","timestamp":"yesterday"}]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := NewJSONStore(path, nil, quietLogger()).Load(context.Background())
	if !common.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestJSONStore_ResetRestartsIDs(t *testing.T) {
	ctx := context.Background()
	s := NewJSONStore(filepath.Join(t.TempDir(), "receipts_data.json"), nil, quietLogger())

	for i := 1; i <= 2; i++ {
		if _, err := s.Append(ctx, sampleFields(i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	records, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("len after reset = %d", len(records))
	}

	rec, err := s.Append(ctx, sampleFields(3))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if rec.ID != 1 {
		t.Errorf("id after reset = %d, want 1", rec.ID)
	}
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts_data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewJSONStore(path, nil, quietLogger())

	_, err := s.Load(context.Background())
	if !common.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	_, err = s.Append(context.Background(), sampleFields(1))
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Code != common.CodePersistence {
		t.Fatalf("expected PERSISTENCE_ERROR, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "{not json" {
		t.Error("failed append must not rewrite the file")
	}
}

func TestJSONStore_EmptyFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts_data.json")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	records, err := NewJSONStore(path, nil, quietLogger()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len = %d", len(records))
	}
}

func TestJSONStore_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	// parent path is a regular file so the directory cannot be created
	s := NewJSONStore(filepath.Join(blocker, "receipts_data.json"), nil, quietLogger())

	if err := s.Reset(context.Background()); !common.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}
