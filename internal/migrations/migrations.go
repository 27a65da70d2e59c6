// Package migrations embeds the ledger schema for each supported dialect and
// applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed sqlite/*.sql postgres/*.sql
var embedded embed.FS

// Up applies every pending migration for dialect ("sqlite" or "postgres").
func Up(ctx context.Context, db *sql.DB, dialect string, log *zap.Logger) error {
	p, err := provider(db, dialect)
	if err != nil {
		return err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply %s migrations: %w", dialect, err)
	}
	for _, r := range results {
		log.Info("applied migration",
			zap.String("dialect", dialect),
			zap.Int64("version", r.Source.Version),
			zap.Duration("took", r.Duration))
	}
	return nil
}

// Version reports the current schema version.
func Version(ctx context.Context, db *sql.DB, dialect string) (int64, error) {
	p, err := provider(db, dialect)
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}

func provider(db *sql.DB, dialect string) (*goose.Provider, error) {
	var d goose.Dialect
	switch dialect {
	case "sqlite":
		d = goose.DialectSQLite3
	case "postgres":
		d = goose.DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported migration dialect %q", dialect)
	}
	fsys, err := fs.Sub(embedded, dialect)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(d, db, fsys)
}
