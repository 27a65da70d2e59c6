package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contractbot/internal/adapters/adb"
	httpadapter "contractbot/internal/adapters/http"
)

func newDevicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List attached adb devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := adb.New(a.cfg.ADB.Path, "", a.log)
			if err := client.AssertReady(); err != nil {
				return err
			}
			devices, err := client.ListDevices(cmd.Context())
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				return adb.ErrNoDevices
			}
			for _, d := range devices {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.Serial, d.Description)
			}
			return nil
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending ledger migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			v, err := db.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info("ledger schema up to date", zap.String("driver", a.cfg.Ledger.Driver), zap.Int64("version", v))
			return nil
		},
	}
}

func newTokenCmd(a *app) *cobra.Command {
	var admin bool
	cmd := &cobra.Command{
		Use:   "token <external-user-id>",
		Short: "Issue an API bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("external user id: %w", err)
			}
			if a.cfg.API.JWTSecret == "" {
				return fmt.Errorf("api.jwt_secret is not configured")
			}
			auth := httpadapter.NewAuthenticator(a.cfg.API.JWTSecret, a.cfg.API.TokenTTL, a.cfg.API.AdminUserIDs)
			token, expires, err := auth.IssueToken(ext, admin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "grant admin rights")
	return cmd
}

func newBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <external-user-id>",
		Short: "Print the credited balance of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("external user id: %w", err)
			}
			db, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			uid, err := db.GetOrCreateUser(cmd.Context(), ext, "")
			if err != nil {
				return err
			}
			bal, err := db.CalculateBalance(cmd.Context(), uid)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", bal)
			return nil
		},
	}
}
