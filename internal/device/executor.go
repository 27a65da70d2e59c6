package device

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

var ErrCaptureFailed = errors.New("screen capture failed")

const (
	captureAttempts = 3
	captureBackoff  = time.Second
)

// Driver issues raw commands against one bound device.
type Driver interface {
	Tap(ctx context.Context, x, y int) error
	Swipe(ctx context.Context, x1, y1, x2, y2 int, d time.Duration) error
	Shell(ctx context.Context, args ...string) error
	// Screencap returns the decoded screenshot; a corrupt image is an error.
	Screencap(ctx context.Context) (image.Image, error)
	Clipboard(ctx context.Context) (string, error)
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Executor struct {
	driver         Driver
	log            *zap.Logger
	sleep          SleepFunc
	captureBackoff time.Duration
}

type Option func(*Executor)

func WithSleep(fn SleepFunc) Option { return func(e *Executor) { e.sleep = fn } }

// WithCaptureBackoff changes the pause between capture attempts.
func WithCaptureBackoff(d time.Duration) Option {
	return func(e *Executor) { e.captureBackoff = d }
}

func NewExecutor(driver Driver, log *zap.Logger, opts ...Option) *Executor {
	e := &Executor{
		driver:         driver,
		log:            log.Named("device"),
		sleep:          Sleep,
		captureBackoff: captureBackoff,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Capture grabs the current screen. Transport and decode failures are retried
// up to three attempts in total before ErrCaptureFailed is returned.
func (e *Executor) Capture(ctx context.Context) (image.Image, error) {
	var img image.Image
	attempt := 0
	b := retry.WithMaxRetries(captureAttempts-1, retry.NewConstant(e.captureBackoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		shot, err := e.driver.Screencap(ctx)
		if err != nil {
			e.log.Warn("screencap attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(err)
		}
		img = shot
		return nil
	})
	if err != nil {
		e.log.Error("unable to capture screen after retries", zap.Int("attempts", attempt), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}
	return img, nil
}

// Clipboard reads the device clipboard.
func (e *Executor) Clipboard(ctx context.Context) (string, error) {
	return e.driver.Clipboard(ctx)
}

// Perform executes one action without the trailing delay.
func (e *Executor) Perform(ctx context.Context, a Action) error {
	if a.Invalid != "" {
		return fmt.Errorf("invalid action %s: %s", a.Kind, a.Invalid)
	}
	switch a.Kind {
	case ActionTap:
		e.log.Info("tap", zap.Int("x", a.X), zap.Int("y", a.Y))
		return e.driver.Tap(ctx, a.X, a.Y)
	case ActionSwipe:
		e.log.Info("swipe", zap.Int("x1", a.X1), zap.Int("y1", a.Y1), zap.Int("x2", a.X2), zap.Int("y2", a.Y2))
		return e.driver.Swipe(ctx, a.X1, a.Y1, a.X2, a.Y2, a.Duration)
	case ActionSleep:
		e.log.Info("sleep", zap.Duration("duration", a.Duration))
		return e.sleep(ctx, a.Duration)
	case ActionShell:
		e.log.Info("shell", zap.Strings("command", a.Command))
		return e.driver.Shell(ctx, a.Command...)
	default:
		return fmt.Errorf("unknown action %q", a.Kind)
	}
}

// ExecuteSequence runs actions in order. Malformed actions are skipped with a
// warning; a device failure stops the sequence. After tap, swipe and shell
// actions it pauses for the action's own delay or defaultDelay.
func (e *Executor) ExecuteSequence(ctx context.Context, actions []Action, defaultDelay time.Duration) error {
	for i, a := range actions {
		if a.Invalid != "" {
			e.log.Warn("skipping malformed UI step", zap.Int("step", i), zap.String("kind", string(a.Kind)), zap.String("reason", a.Invalid))
			continue
		}
		if err := e.Perform(ctx, a); err != nil {
			return fmt.Errorf("step %d %s: %w", i, a, err)
		}
		if a.Kind == ActionSleep {
			continue
		}
		delay := defaultDelay
		if a.Delay != nil {
			delay = *a.Delay
		}
		if err := e.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}
