package ingest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"contractbot/internal/device"
	"contractbot/internal/domain"
	"contractbot/internal/platform/metrics"
	"contractbot/internal/ports"
	"contractbot/internal/recognition"
	"contractbot/internal/services/buyback"
	"contractbot/internal/services/composition"
)

// UI sequence names read from configuration.
const (
	SeqOpenContracts      = "open_contracts_steps"
	SeqCloseContracts     = "close_contracts_window"
	SeqFirstContract      = "first_contract_tap"
	SeqSwipeToComposition = "swipe_to_composition"
	SeqCompositionTap     = "composition_fixed_tap"
	SeqCopy               = "copy_sequence"
	SeqCloseContractCard  = "close_contract_card"
	SeqAcceptContract     = "accept_contract"
)

// Device is the part of the executor the cycle drives.
type Device interface {
	Capture(ctx context.Context) (image.Image, error)
	Clipboard(ctx context.Context) (string, error)
	ExecuteSequence(ctx context.Context, actions []device.Action, defaultDelay time.Duration) error
}

// Store is the part of the ledger the cycle writes to.
type Store interface {
	ports.TrainingQueue
	GetUserByCharacter(ctx context.Context, nickname string) (int64, bool, error)
	ExternalIDForUser(ctx context.Context, userID int64) (int64, bool, error)
	RecordContract(ctx context.Context, draft domain.ContractDraft) (domain.RecordedContract, error)
	StoreOcrSample(ctx context.Context, sample domain.OcrSample) error
}

// Queue accepts notifications without blocking.
type Queue interface {
	Enqueue(n domain.ContractNotification) bool
}

type Config struct {
	Sequences       map[string][]device.Action
	PollInterval    time.Duration
	Cooldown        time.Duration
	ActionDelay     time.Duration
	CardPause       time.Duration
	ClipboardSettle time.Duration
}

type Controller struct {
	device     Device
	recognizer ports.Recognizer
	parser     *composition.Parser
	store      Store
	buyback    *buyback.Percent
	cfg        Config
	log        *zap.Logger

	hostClip  ports.ClipboardReader
	artifacts ports.ArtifactStore
	queue     Queue
	sleep     device.SleepFunc
}

type Option func(*Controller)

func WithHostClipboard(r ports.ClipboardReader) Option { return func(c *Controller) { c.hostClip = r } }
func WithArtifacts(s ports.ArtifactStore) Option       { return func(c *Controller) { c.artifacts = s } }
func WithQueue(q Queue) Option                         { return func(c *Controller) { c.queue = q } }
func WithSleep(fn device.SleepFunc) Option             { return func(c *Controller) { c.sleep = fn } }

func New(dev Device, rec ports.Recognizer, parser *composition.Parser, store Store, pct *buyback.Percent, cfg Config, log *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		device:     dev,
		recognizer: rec,
		parser:     parser,
		store:      store,
		buyback:    pct,
		cfg:        cfg,
		log:        log.Named("ingest"),
		sleep:      device.Sleep,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run executes cycles back to back until ctx is done. A failing or panicking
// cycle is logged and followed by one poll interval of backoff.
func (c *Controller) Run(ctx context.Context) error {
	c.log.Info("starting contract processing loop",
		zap.Duration("poll_interval", c.cfg.PollInterval),
		zap.Duration("cooldown", c.cfg.Cooldown))
	for {
		if ctx.Err() != nil {
			c.log.Info("contract processing loop stopped")
			return nil
		}
		start := time.Now()
		outcome, err := c.guardedCycle(ctx)
		metrics.CycleDuration.Observe(time.Since(start).Seconds())
		metrics.CyclesTotal.WithLabelValues(outcome).Inc()
		if err != nil {
			c.log.Error("contract cycle failed", zap.String("outcome", outcome), zap.Error(err))
			if c.sleep(ctx, c.cfg.PollInterval) != nil {
				c.log.Info("contract processing loop stopped")
				return nil
			}
		}
	}
}

func (c *Controller) guardedCycle(ctx context.Context) (outcome string, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = metrics.OutcomeFailed
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()
	return c.RunCycle(ctx)
}

// RunCycle performs one poll, detect, extract, record and confirm pass and
// returns its outcome. Device work runs to completion even when ctx is
// cancelled; only the idle and cooldown sleeps observe cancellation.
func (c *Controller) RunCycle(ctx context.Context) (string, error) {
	log := c.log.With(zap.String("cycle_id", uuid.NewString()))
	dev := context.WithoutCancel(ctx)

	c.applyPendingTraining(dev, log)

	if err := c.runSequence(dev, SeqOpenContracts); err != nil {
		return metrics.OutcomeFailed, err
	}
	screen, err := c.device.Capture(dev)
	if err != nil {
		return metrics.OutcomeFailed, err
	}
	hasContract, err := c.recognizer.HasText(dev, screen, recognition.RegionMarker)
	if err != nil {
		return metrics.OutcomeFailed, fmt.Errorf("check contracts marker: %w", err)
	}
	if !hasContract {
		log.Info("no contract detected; closing window and sleeping")
		if err := c.runSequence(dev, SeqCloseContracts); err != nil {
			return metrics.OutcomeFailed, err
		}
		_ = c.sleep(ctx, c.cfg.PollInterval)
		return metrics.OutcomeIdle, nil
	}

	log.Info("contract marker detected, processing first contract")
	if err := c.runSequence(dev, SeqFirstContract); err != nil {
		return metrics.OutcomeFailed, err
	}
	_ = c.sleep(dev, c.cfg.CardPause)
	card, err := c.device.Capture(dev)
	if err != nil {
		return metrics.OutcomeFailed, fmt.Errorf("capture contract card: %w", err)
	}

	cardTexts := make(map[string]string, 3)
	for _, region := range cardRegions {
		text, err := c.recognizer.Recognize(dev, card, region, headerPSM)
		if err != nil {
			return metrics.OutcomeFailed, err
		}
		cardTexts[region] = text
	}
	system := composition.ExtractSystem(cardTexts[recognition.RegionSystem])
	player := composition.ExtractNick(cardTexts[recognition.RegionPlayerName])
	log.Info("OCR extracted contract header",
		zap.String("system", system),
		zap.String("player", player),
		zap.String("game_time", cardTexts[recognition.RegionGameTime]))

	if err := c.runSequence(dev, SeqSwipeToComposition); err != nil {
		return metrics.OutcomeFailed, err
	}
	if err := c.runSequence(dev, SeqCompositionTap); err != nil {
		return metrics.OutcomeFailed, err
	}
	copyConfigured := len(c.cfg.Sequences[SeqCopy]) > 0
	if copyConfigured {
		if err := c.runSequence(dev, SeqCopy); err != nil {
			return metrics.OutcomeFailed, err
		}
		_ = c.sleep(dev, c.cfg.ClipboardSettle)
	}

	ex := c.extract(dev, log, copyConfigured)
	if len(ex.items) == 0 {
		log.Warn("failed to parse composition; skipping contract acceptance")
		if err := c.runSequence(dev, SeqCloseContractCard); err != nil {
			return metrics.OutcomeFailed, err
		}
		if err := c.runSequence(dev, SeqCloseContracts); err != nil {
			return metrics.OutcomeFailed, err
		}
		_ = c.sleep(ctx, c.cfg.PollInterval)
		return metrics.OutcomeSkipped, nil
	}
	metrics.ExtractionTotal.WithLabelValues(string(ex.source)).Inc()

	draft := domain.ContractDraft{
		System:         system,
		PlayerName:     player,
		BuybackPercent: c.buyback.Get(),
		Items:          ex.items,
	}
	userID, linked, err := c.store.GetUserByCharacter(dev, player)
	if err != nil {
		return metrics.OutcomeFailed, fmt.Errorf("resolve player %q: %w", player, err)
	}
	if linked {
		draft.UserID = &userID
	}
	rec, err := c.store.RecordContract(dev, draft)
	if err != nil {
		return metrics.OutcomeFailed, err
	}
	metrics.ContractsRecorded.Inc()
	if rec.CreditedAmount > 0 {
		metrics.CreditedAmount.Add(rec.CreditedAmount)
	}
	log = log.With(zap.Int64("contract_id", rec.ID))

	arts, screenshotRef := c.persistArtifacts(dev, log, rec.ID, card, cardTexts, ex)

	var cleanupErr error
	for _, seq := range []string{SeqCloseContractCard, SeqAcceptContract, SeqCloseContracts} {
		if err := c.runSequence(dev, seq); err != nil {
			cleanupErr = err
			break
		}
	}
	log.Info("completed contract processing, entering cooldown",
		zap.Float64("estimated_total", rec.EstimatedTotal),
		zap.Float64("credited", rec.CreditedAmount))
	if cleanupErr == nil {
		_ = c.sleep(ctx, c.cfg.Cooldown)
	}

	n := domain.ContractNotification{
		ContractID:     rec.ID,
		PlayerName:     player,
		System:         system,
		EstimatedTotal: rec.EstimatedTotal,
		CreditedAmount: rec.CreditedAmount,
		OcrArtifacts:   arts,
		ScreenshotRef:  screenshotRef,
	}
	if linked {
		if ext, ok, err := c.store.ExternalIDForUser(dev, userID); err != nil {
			log.Warn("resolve external identity failed", zap.Error(err))
		} else if ok {
			n.ExternalUserID = &ext
		}
	}
	if c.queue != nil {
		c.queue.Enqueue(n)
	}
	return metrics.OutcomeRecorded, cleanupErr
}

// Page segmentation modes: block of text for header fields and the
// composition table.
const (
	headerPSM = 6
	tablePSM  = 6
)

var cardRegions = []string{recognition.RegionSystem, recognition.RegionPlayerName, recognition.RegionGameTime}

func (c *Controller) runSequence(ctx context.Context, name string) error {
	actions := c.cfg.Sequences[name]
	if len(actions) == 0 {
		return nil
	}
	if err := c.device.ExecuteSequence(ctx, actions, c.cfg.ActionDelay); err != nil {
		return fmt.Errorf("sequence %s: %w", name, err)
	}
	return nil
}

// applyPendingTraining feeds queued training words to the recognizer. Words
// that could not be delivered go back on the queue.
func (c *Controller) applyPendingTraining(ctx context.Context, log *zap.Logger) {
	words, err := c.store.ConsumeTrainingWords(ctx)
	if err != nil {
		log.Warn("consume training words failed", zap.Error(err))
		return
	}
	if len(words) == 0 {
		return
	}
	if err := c.recognizer.AddTrainingWords(words); err != nil {
		log.Error("failed to append training words to OCR engine", zap.Int("words", len(words)), zap.Error(err))
		if _, qerr := c.store.QueueTrainingWords(ctx, words); qerr != nil {
			log.Error("re-queue training words failed", zap.Error(errors.Join(err, qerr)))
		}
		return
	}
	log.Info("applied OCR training words", zap.Int("words", len(words)))
}
