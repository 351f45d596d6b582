package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

// PostgresStore persists records in a postgres table through a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	now    Clock
	logger *slog.Logger
}

var _ ReceiptRepository = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool, now Clock, logger *slog.Logger) *PostgresStore {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{pool: pool, now: now, logger: logger}
}

func (s *PostgresStore) Load(ctx context.Context) ([]*entity.Receipt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, date, liters, price_per_liter, vat, total_price, fuel_type, created_at
		 FROM receipts ORDER BY id`)
	if err != nil {
		s.logger.Error("store.load.error", "backend", common.BackendPostgres, "error", err)
		return nil, common.NewPersistenceError("query receipts", err)
	}
	defer rows.Close()

	records := make([]*entity.Receipt, 0)
	for rows.Next() {
		var (
			rec  entity.Receipt
			date time.Time
		)
		if err := rows.Scan(&rec.ID, &date, &rec.Liters, &rec.PricePerLiter, &rec.VAT, &rec.TotalPrice, &rec.FuelType, &rec.Timestamp.Time); err != nil {
			return nil, common.NewPersistenceError("scan receipt", err)
		}
		rec.Date = entity.NewDate(date.Year(), date.Month(), date.Day())
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewPersistenceError("iterate receipts", err)
	}
	return records, nil
}

func (s *PostgresStore) Append(ctx context.Context, fields entity.ReceiptFields) (*entity.Receipt, error) {
	var rec *entity.Receipt
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		// serialise concurrent appends so count+1 stays unique
		if _, err := tx.Exec(ctx, `LOCK TABLE receipts IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}
		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&count); err != nil {
			return err
		}
		rec = entity.NewReceipt(count+1, fields, s.now())
		_, err := tx.Exec(ctx,
			`INSERT INTO receipts (id, date, liters, price_per_liter, vat, total_price, fuel_type, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			rec.ID, rec.Date.Time, rec.Liters, rec.PricePerLiter, rec.VAT, rec.TotalPrice, rec.FuelType, rec.Timestamp.Time,
		)
		return err
	})
	if err != nil {
		s.logger.Error("store.append.error", "backend", common.BackendPostgres, "error", err)
		return nil, common.NewPersistenceError("insert receipt", err)
	}

	s.logger.Info("store.append.ok", "backend", common.BackendPostgres, "id", rec.ID)
	return rec, nil
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM receipts`); err != nil {
		s.logger.Error("store.reset.error", "backend", common.BackendPostgres, "error", err)
		return common.NewPersistenceError("delete receipts", err)
	}
	s.logger.Info("store.reset.ok", "backend", common.BackendPostgres)
	return nil
}
