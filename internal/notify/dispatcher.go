// Package notify delivers booking notifications to their recipients.
//
// Delivery is best-effort and decoupled from the operation that produced
// the event: callers Submit a batch and return immediately, workers persist
// each notification independently, and failures are only logged.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/nhle/venuebook/internal/model"
)

// Sink persists a notification and returns the stored record.
type Sink interface {
	CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error)
}

// Event is one notification addressed to one recipient.
type Event struct {
	RecipientID   string
	SenderID      string
	Type          model.NotificationType
	Title         string
	Body          string
	ResourceID    string
	ReservationID string
}

func (e Event) notification() model.Notification {
	return model.Notification{
		ID:            uuid.New().String(),
		RecipientID:   e.RecipientID,
		SenderID:      e.SenderID,
		Type:          e.Type,
		Title:         e.Title,
		Message:       e.Body,
		ResourceID:    e.ResourceID,
		ReservationID: e.ReservationID,
	}
}

// Result is the outcome of delivering one Event.
type Result struct {
	Event        Event
	Notification model.Notification
	Err          error
}

// Options configures a Dispatcher.
type Options struct {
	// Workers is the number of goroutines draining the queue.
	Workers int

	// QueueSize bounds the number of batches waiting for a worker. Submit
	// drops batches beyond it instead of blocking.
	QueueSize int

	// MaxAttempts is how many times each notification is tried.
	MaxAttempts int

	RetryDelay time.Duration

	Logger *slog.Logger
}

// OptionsFromConfig maps the notify section of the app config to Options.
func OptionsFromConfig(cfg model.NotifyConfig, logger *slog.Logger) Options {
	return Options{
		Workers:     cfg.Workers,
		QueueSize:   cfg.QueueSize,
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  time.Duration(cfg.RetryDelayMs) * time.Millisecond,
		Logger:      logger,
	}
}

type batch struct {
	ctx    context.Context
	events []Event
}

// Dispatcher fans notifications out to a Sink.
type Dispatcher struct {
	sink   Sink
	opts   Options
	logger *slog.Logger
	queue  chan batch

	mu       sync.Mutex
	idle     *sync.Cond
	inflight int
	closed   bool
	dropped  int

	workers sync.WaitGroup
}

// NewDispatcher creates a Dispatcher and starts its workers. Call Close to
// drain the queue and stop them.
func NewDispatcher(sink Sink, opts Options) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 64
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		sink:   sink,
		opts:   opts,
		logger: logger.With("component", "notify"),
		queue:  make(chan batch, opts.QueueSize),
	}
	d.idle = sync.NewCond(&d.mu)

	d.workers.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.work()
	}
	return d
}

// Dispatch persists a single notification, retrying transient failures up
// to MaxAttempts times.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (model.Notification, error) {
	if ev.RecipientID == "" {
		return model.Notification{}, model.Invalid("recipient", "must not be empty")
	}

	n := ev.notification()
	var lastErr error
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		saved, err := d.sink.CreateNotification(ctx, n)
		if err == nil {
			return saved, nil
		}
		lastErr = err

		if _, permanent := model.AsValidation(err); permanent || attempt == d.opts.MaxAttempts {
			break
		}

		d.logger.Debug("retrying notification",
			"recipient", ev.RecipientID, "type", ev.Type, "attempt", attempt, "error", err)

		timer := time.NewTimer(d.opts.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return model.Notification{}, fmt.Errorf("dispatching %s to %s: %w", ev.Type, ev.RecipientID, ctx.Err())
		case <-timer.C:
		}
	}

	return model.Notification{}, fmt.Errorf("dispatching %s to %s: %w", ev.Type, ev.RecipientID, lastErr)
}

// DispatchAll delivers every event concurrently and waits for all of them.
// One event failing does not affect the others; results keep input order.
func (d *Dispatcher) DispatchAll(ctx context.Context, events []Event) []Result {
	if len(events) == 0 {
		return nil
	}

	results := make([]Result, len(events))
	p := pool.New().WithMaxGoroutines(len(events))
	for i, ev := range events {
		p.Go(func() {
			n, err := d.Dispatch(ctx, ev)
			results[i] = Result{Event: ev, Notification: n, Err: err}
		})
	}
	p.Wait()

	return results
}

// Submit queues events for background delivery and returns immediately.
// The batch outlives ctx's cancellation but keeps its values. When the
// queue is full or the dispatcher is closed the batch is dropped and logged.
func (d *Dispatcher) Submit(ctx context.Context, events ...Event) bool {
	if len(events) == 0 {
		return true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.dropped++
		d.logger.Warn("dispatcher closed, dropping notifications", "count", len(events))
		return false
	}

	select {
	case d.queue <- batch{ctx: context.WithoutCancel(ctx), events: events}:
		d.inflight++
		return true
	default:
		d.dropped++
		d.logger.Warn("notification queue full, dropping notifications", "count", len(events))
		return false
	}
}

// Flush blocks until every submitted batch has been processed.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.inflight > 0 {
		d.idle.Wait()
	}
}

// Dropped returns how many batches were rejected by Submit.
func (d *Dispatcher) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Close stops accepting batches, delivers what is queued, and waits for
// the workers to exit. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.workers.Wait()
}

func (d *Dispatcher) work() {
	defer d.workers.Done()

	for b := range d.queue {
		for _, r := range d.DispatchAll(b.ctx, b.events) {
			if r.Err != nil {
				d.logger.Warn("notification dispatch failed",
					"recipient", r.Event.RecipientID,
					"type", r.Event.Type,
					"reservation", r.Event.ReservationID,
					"error", r.Err,
				)
				continue
			}
			d.logger.Debug("notification delivered",
				"id", r.Notification.ID,
				"recipient", r.Event.RecipientID,
				"type", r.Event.Type,
			)
		}

		d.mu.Lock()
		d.inflight--
		if d.inflight == 0 {
			d.idle.Broadcast()
		}
		d.mu.Unlock()
	}
}
