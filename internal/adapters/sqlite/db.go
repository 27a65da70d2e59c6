package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"contractbot/internal/migrations"
)

// DB is the embedded ledger. A single connection serializes writers.
type DB struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

// Open opens (creating if needed) the ledger file at path and applies
// pending migrations.
func Open(ctx context.Context, path string, log *zap.Logger) (*DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	l := log.Named("ledger")
	if err := migrations.Up(ctx, db, "sqlite", l); err != nil {
		db.Close()
		return nil, err
	}
	l.Info("sqlite ledger ready", zap.String("path", path))
	return &DB{db: db, log: l, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// inTx runs fn inside one transaction, committing on success.
func (d *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	return fn(tx)
}

// toTime accepts the representations the driver yields for timestamp
// columns.
func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		return parseTime(t)
	case []byte:
		return parseTime(string(t))
	case int64:
		return time.Unix(t, 0).UTC()
	}
	return time.Time{}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func toTimePtr(v any) *time.Time {
	if v == nil {
		return nil
	}
	t := toTime(v)
	if t.IsZero() {
		return nil
	}
	return &t
}

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }

// SchemaVersion reports the applied migration version.
func (d *DB) SchemaVersion(ctx context.Context) (int64, error) {
	return migrations.Version(ctx, d.db, "sqlite")
}
