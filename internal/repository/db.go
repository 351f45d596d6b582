package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
)

// Open builds the record store selected by cfg.Backend. The returned func
// releases any underlying connections.
func Open(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (ReceiptRepository, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case common.BackendJSON, "":
		logger.Info("store.open.ok", "backend", common.BackendJSON, "path", cfg.Path)
		return NewJSONStore(cfg.Path, nil, logger), func() {}, nil

	case common.BackendSQLite:
		store, err := OpenSQLite(ctx, cfg.SQLitePath, nil, logger)
		if err != nil {
			logger.Error("store.open.error", "backend", common.BackendSQLite, "error", err)
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close sqlite store", "error", err)
			}
		}, nil

	case common.BackendPostgres:
		if err := RunPostgresMigrations(cfg.DSN); err != nil {
			logger.Error("store.migrate.error", "backend", common.BackendPostgres, "error", err)
			return nil, nil, err
		}
		pool, err := OpenPool(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresStore(pool, nil, logger), func() { Close(pool, logger) }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// OpenPool creates a pgx pool for the postgres backend.
func OpenPool(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database url", "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "fuel-tracker"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

// Close closes the pool gracefully
func Close(pool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("closing database connections")
	if pool != nil {
		pool.Close()
	}
	logger.Info("database connections closed")
}

// Pinger is implemented by backends that hold a live connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the postgres pool is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// HealthCheck verifies the store can be read. Backends with a connection are
// pinged first.
func HealthCheck(ctx context.Context, repo ReceiptRepository, timeout time.Duration, logger *slog.Logger) (int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if p, ok := repo.(Pinger); ok {
		logger.Debug("pinging database")
		if err := p.Ping(ctx); err != nil {
			return 0, common.NewPersistenceError("ping", err)
		}
		logger.Debug("database ping successful")
	}

	records, err := repo.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
