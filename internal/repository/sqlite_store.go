package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/entity"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records in a local sqlite database.
type SQLiteStore struct {
	db     *sql.DB
	now    Clock
	logger *slog.Logger
}

var _ ReceiptRepository = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string, now Clock, logger *slog.Logger) (*SQLiteStore, error) {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer at a time keeps count+insert consistent
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunSQLiteMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("store.open.ok", "backend", common.BackendSQLite, "path", path)
	return &SQLiteStore{db: db, now: now, logger: logger}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Load(ctx context.Context) ([]*entity.Receipt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, liters, price_per_liter, vat, total_price, fuel_type, created_at
		 FROM receipts ORDER BY id`)
	if err != nil {
		s.logger.Error("store.load.error", "backend", common.BackendSQLite, "error", err)
		return nil, common.NewPersistenceError("query receipts", err)
	}
	defer rows.Close()

	records := make([]*entity.Receipt, 0)
	for rows.Next() {
		var (
			rec      entity.Receipt
			date, ts string
		)
		if err := rows.Scan(&rec.ID, &date, &rec.Liters, &rec.PricePerLiter, &rec.VAT, &rec.TotalPrice, &rec.FuelType, &ts); err != nil {
			return nil, common.NewPersistenceError("scan receipt", err)
		}
		if rec.Date, err = entity.ParseDate(date); err != nil {
			return nil, common.NewPersistenceError("decode receipt date", err)
		}
		if rec.Timestamp.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, common.NewPersistenceError("decode receipt timestamp", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewPersistenceError("iterate receipts", err)
	}
	return records, nil
}

func (s *SQLiteStore) Append(ctx context.Context, fields entity.ReceiptFields) (*entity.Receipt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewPersistenceError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&count); err != nil {
		return nil, common.NewPersistenceError("count receipts", err)
	}

	rec := entity.NewReceipt(count+1, fields, s.now())
	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id, date, liters, price_per_liter, vat, total_price, fuel_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Date.String(), rec.Liters, rec.PricePerLiter, rec.VAT, rec.TotalPrice, rec.FuelType,
		rec.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		s.logger.Error("store.append.error", "backend", common.BackendSQLite, "error", err)
		return nil, common.NewPersistenceError("insert receipt", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewPersistenceError("commit receipt", err)
	}

	s.logger.Info("store.append.ok", "backend", common.BackendSQLite, "id", rec.ID)
	return rec, nil
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM receipts`); err != nil {
		s.logger.Error("store.reset.error", "backend", common.BackendSQLite, "error", err)
		return common.NewPersistenceError("delete receipts", err)
	}
	s.logger.Info("store.reset.ok", "backend", common.BackendSQLite)
	return nil
}
