package dispatch

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"contractbot/internal/domain"
	"contractbot/internal/platform/metrics"
	"contractbot/internal/ports"
)

const DefaultQueueSize = 64

// Dispatcher decouples notification delivery from the ingestion cycle. The
// cycle hands events to Enqueue, which never blocks; Run delivers them to
// every sink in order.
type Dispatcher struct {
	queue chan domain.ContractNotification
	sinks []ports.Notifier
	log   *zap.Logger

	mu     sync.RWMutex
	closed bool
}

func New(queueSize int, log *zap.Logger, sinks ...ports.Notifier) *Dispatcher {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		queue: make(chan domain.ContractNotification, queueSize),
		sinks: sinks,
		log:   log.Named("dispatch"),
	}
}

// Enqueue hands n to the dispatcher. It reports false and drops the event
// when the queue is full or closed.
func (d *Dispatcher) Enqueue(n domain.ContractNotification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("dispatcher closed, dropping event", zap.Int64("contract_id", n.ContractID))
		return false
	}
	select {
	case d.queue <- n:
		return true
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn("notification queue full, dropping event", zap.Int64("contract_id", n.ContractID))
		return false
	}
}

// Close stops intake. Run drains what is queued and returns.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
}

// Run delivers queued notifications until the queue is closed or ctx is
// done. Remaining events are delivered on close, not on cancellation.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-d.queue:
			if !ok {
				return nil
			}
			d.deliver(ctx, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n domain.ContractNotification) {
	for i, sink := range d.sinks {
		if err := d.safeNotify(ctx, sink, n); err != nil {
			metrics.NotificationsTotal.WithLabelValues("failed").Inc()
			d.log.Error("notification delivery failed",
				zap.Int("sink", i),
				zap.Int64("contract_id", n.ContractID),
				zap.Error(err))
			continue
		}
		metrics.NotificationsTotal.WithLabelValues("delivered").Inc()
	}
}

func (d *Dispatcher) safeNotify(ctx context.Context, sink ports.Notifier, n domain.ContractNotification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	return sink.Notify(ctx, n)
}
