package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"contractbot/internal/migrations"
	"contractbot/internal/ports"
)

var _ ports.Ledger = (*DB)(nil)

type DB struct {
	Pool *pgxpool.Pool
	log  *zap.Logger
}

func Connect(ctx context.Context, url string, log *zap.Logger) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &DB{Pool: pool, log: log.Named("ledger")}, nil
}

// Migrate applies pending schema migrations through a database/sql handle
// over the pool.
func (db *DB) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()
	if err := migrations.Up(ctx, sqlDB, "postgres", db.log); err != nil {
		return fmt.Errorf("migrate postgres ledger: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

// SchemaVersion reports the applied migration version.
func (db *DB) SchemaVersion(ctx context.Context) (int64, error) {
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()
	return migrations.Version(ctx, sqlDB, "postgres")
}
