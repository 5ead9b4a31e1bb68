// Package notify delivers post-commit notifications out of band. Delivery
// failures are logged and counted but never reach the ledger.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// Outcome labels passed to a Recorder.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

// Recorder counts notification outcomes.
type Recorder interface {
	RecordNotification(template, outcome string)
}

type noRecorder struct{}

func (noRecorder) RecordNotification(string, string) {}

// Config for Dispatcher.
type Config struct {
	Notifier  usecase.Notifier
	Logger    zerolog.Logger
	Recorder  Recorder
	Workers   int           // Number of delivery goroutines
	QueueSize int           // Buffered notifications before Enqueue drops
	Timeout   time.Duration // Per-delivery deadline
}

// Dispatcher is a bounded queue drained by a fixed pool of workers. It
// implements usecase.NotificationQueue.
type Dispatcher struct {
	notifier usecase.Notifier
	logger   zerolog.Logger
	recorder Recorder
	workers  int
	timeout  time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan domain.Notification
	wg     sync.WaitGroup
}

// NewDispatcher creates a new Dispatcher. Workers are not started until Start.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Recorder == nil {
		cfg.Recorder = noRecorder{}
	}

	return &Dispatcher{
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
		workers:  cfg.Workers,
		timeout:  cfg.Timeout,
		queue:    make(chan domain.Notification, cfg.QueueSize),
	}
}

// Enqueue hands n to the workers without blocking. When the queue is full or
// the dispatcher has stopped, n is dropped.
func (d *Dispatcher) Enqueue(n domain.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(n, "dispatcher stopped")
		return
	}

	select {
	case d.queue <- n:
	default:
		d.drop(n, "queue full")
	}
}

// Start runs the workers until ctx is cancelled, then delivers whatever is
// still queued and returns ctx.Err().
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info().
		Int("workers", d.workers).
		Int("queue_size", cap(d.queue)).
		Msg("notification dispatcher started")

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}

	<-ctx.Done()
	d.Stop()

	d.logger.Info().Msg("notification dispatcher stopped")
	return ctx.Err()
}

// Stop closes the queue and waits for the workers to drain it. It is safe to
// call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()

	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.notifier.Notify(ctx, n); err != nil {
		d.recorder.RecordNotification(string(n.Template), OutcomeFailed)
		d.logger.Warn().
			Err(err).
			Str("template", string(n.Template)).
			Str("account_number", n.Recipient.AccountNumber).
			Msg("failed to deliver notification")
		return
	}

	d.recorder.RecordNotification(string(n.Template), OutcomeSent)
}

func (d *Dispatcher) drop(n domain.Notification, reason string) {
	d.recorder.RecordNotification(string(n.Template), OutcomeDropped)
	d.logger.Warn().
		Str("template", string(n.Template)).
		Str("account_number", n.Recipient.AccountNumber).
		Str("reason", reason).
		Msg("notification dropped")
}
