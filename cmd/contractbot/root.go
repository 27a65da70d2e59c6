package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contractbot/internal/adapters/postgres"
	"contractbot/internal/adapters/sqlite"
	"contractbot/internal/config"
	"contractbot/internal/platform/logger"
	"contractbot/internal/ports"
)

// app carries what every subcommand needs after the root pre-run.
type app struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "contractbot",
		Short:         "Ingest in-game contracts from an Android device into a ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Env, cfg.Log.Level)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "config.yaml", "path to the YAML configuration file")

	root.AddCommand(
		newRunCmd(a),
		newDevicesCmd(a),
		newMigrateCmd(a),
		newTokenCmd(a),
		newBalanceCmd(a),
	)
	return root
}

// ledger is the durable store plus schema introspection.
type ledger interface {
	ports.Ledger
	SchemaVersion(ctx context.Context) (int64, error)
}

// openLedger connects the configured ledger and applies pending migrations.
func (a *app) openLedger(ctx context.Context) (ledger, error) {
	switch a.cfg.Ledger.Driver {
	case "postgres":
		db, err := postgres.Connect(ctx, a.cfg.Ledger.DSN, a.log)
		if err != nil {
			return nil, fmt.Errorf("connect postgres ledger: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	case "sqlite", "":
		db, err := sqlite.Open(ctx, a.cfg.Ledger.DSN, a.log)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", a.cfg.Ledger.Driver)
	}
}
