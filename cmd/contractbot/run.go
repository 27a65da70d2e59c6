package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"contractbot/internal/adapters/adb"
	"contractbot/internal/adapters/artifacts"
	"contractbot/internal/adapters/hostclip"
	httpadapter "contractbot/internal/adapters/http"
	"contractbot/internal/adapters/notify"
	"contractbot/internal/adapters/tesseract"
	"contractbot/internal/device"
	"contractbot/internal/ports"
	"contractbot/internal/recognition"
	"contractbot/internal/services/buyback"
	"contractbot/internal/services/composition"
	"contractbot/internal/services/review"
	"contractbot/internal/workers/dispatch"
	"contractbot/internal/workers/ingest"
)

const shutdownTimeout = 5 * time.Second

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the ingestion worker and the command API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd)
		},
	}
}

func (a *app) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, log := a.cfg, a.log
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	executor, err := a.bindDevice(ctx, cmd)
	if err != nil {
		return err
	}

	rec, err := tesseract.New(tesseract.Options{
		Command:     cfg.OCR.TesseractCmd,
		Lang:        cfg.OCR.Lang,
		TrainingDir: cfg.OCR.TrainingDir,
		Scale:       cfg.OCR.Scale,
		Regions:     recognition.RegionsFromConfig(cfg.OCR.Regions),
	}, log)
	if err != nil {
		return err
	}
	if err := rec.AssertReady(); err != nil {
		return err
	}

	store, err := a.artifactStore(ctx)
	if err != nil {
		return err
	}

	sinks := []ports.Notifier{notify.NewLog(log)}
	if r := cfg.Notify.Redis; r.Addr != "" {
		client, err := notify.ConnectRedis(ctx, r.Addr, r.Password, r.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		sinks = append(sinks, notify.NewRedisStream(client, r.Stream))
	}
	dispatcher := dispatch.New(cfg.Notify.QueueSize, log, sinks...)

	pct := buyback.New(cfg.Cycle.BuybackPercent)
	sequences := make(map[string][]device.Action, len(cfg.UI))
	for name, raw := range cfg.UI {
		sequences[name] = device.ParseSequence(raw)
	}
	ctrl := ingest.New(executor, rec, composition.NewParser(log), db, pct, ingest.Config{
		Sequences:       sequences,
		PollInterval:    cfg.Cycle.PollInterval,
		Cooldown:        cfg.Cycle.Cooldown,
		ActionDelay:     cfg.Cycle.ActionDelay,
		CardPause:       cfg.Cycle.CardPause,
		ClipboardSettle: cfg.Cycle.ClipboardSettle,
	}, log,
		ingest.WithHostClipboard(hostclip.New(log)),
		ingest.WithArtifacts(store),
		ingest.WithQueue(dispatcher),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer dispatcher.Close()
		return ctrl.Run(gctx)
	})
	// drains the queue after the controller closes it
	g.Go(func() error { return dispatcher.Run(context.WithoutCancel(gctx)) })

	if cfg.API.ListenAddr != "" {
		auth := httpadapter.NewAuthenticator(cfg.API.JWTSecret, cfg.API.TokenTTL, cfg.API.AdminUserIDs)
		api := httpadapter.New(db, review.NewService(db, log), pct, auth, log)
		ln, err := net.Listen("tcp", cfg.API.ListenAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.API.ListenAddr, err)
		}
		if cfg.API.MaxConns > 0 {
			ln = netutil.LimitListener(ln, cfg.API.MaxConns)
		}
		srv := &http.Server{Handler: api.Routes(), ReadHeaderTimeout: 10 * time.Second}
		g.Go(func() error {
			log.Info("command API listening", zap.String("addr", ln.Addr().String()))
			if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	err = g.Wait()
	log.Info("shutdown complete")
	return err
}

// bindDevice resolves the adb serial, persisting a discovered one, and
// returns an executor bound to it.
func (a *app) bindDevice(ctx context.Context, cmd *cobra.Command) (*device.Executor, error) {
	probe := adb.New(a.cfg.ADB.Path, "", a.log)
	if err := probe.AssertReady(); err != nil {
		return nil, err
	}
	serial, err := adb.SelectDevice(ctx, probe, a.cfg.ADB.Serial, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return nil, fmt.Errorf("select adb device: %w", err)
	}
	if serial != a.cfg.ADB.Serial {
		if err := a.cfg.PersistSerial(serial); err != nil {
			a.log.Warn("could not persist adb serial", zap.Error(err))
		}
	}
	a.log.Info("bound adb device", zap.String("serial", serial))
	return device.NewExecutor(adb.New(a.cfg.ADB.Path, serial, a.log), a.log), nil
}

func (a *app) artifactStore(ctx context.Context) (ports.ArtifactStore, error) {
	if a.cfg.Artifacts.Driver != "minio" {
		return artifacts.NewFS(a.cfg.Artifacts.Root), nil
	}
	m, err := artifacts.NewMinio(a.cfg.Artifacts.Minio)
	if err != nil {
		return nil, err
	}
	if err := m.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return m, nil
}
