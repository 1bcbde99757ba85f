// Package reconcile runs the periodic status reconciliation loop.
//
// Every tick it reads the orders and delivery assignments still in flight,
// evaluates the configured policy against the time each record has spent in
// its current status, and writes the advanced status back to the store.
// Records are processed independently; one failure never aborts the rest, and
// a failed tick simply leaves the work for the next one.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/freshlane/wholesale-admin/internal/models"
)

// DefaultInterval is the tick period used when the caller does not supply one.
const DefaultInterval = 30 * time.Minute

// maxConcurrentWrites bounds the per-record write fan-out within a pass.
const maxConcurrentWrites = 8

// Store is the slice of the document store the reconciler needs. The active
// reads must exclude terminal records; the store's candidate queries do.
type Store interface {
	ActiveOrders(ctx context.Context) ([]models.Order, error)
	ActiveDeliveries(ctx context.Context) ([]models.DeliveryAssignment, error)
	SetOrderStatus(ctx context.Context, id string, status models.OrderStatus, deliveredAt *time.Time) error
	SetDeliveryStatus(ctx context.Context, id string, status models.OrderStatus, deliveredAt *time.Time) error
}

// Config tunes a Reconciler. Zero values fall back to defaults.
type Config struct {
	// Interval is the tick period. Defaults to DefaultInterval.
	Interval time.Duration
	// Policy is the per-status transition table. Defaults to DefaultPolicy.
	Policy Policy
	// Now is the time source, injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

// Reconciler owns the recurring read-evaluate-write cycle.
type Reconciler struct {
	store    Store
	policy   Policy
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// New validates the configuration and returns a Reconciler ready to start.
func New(store Store, cfg Config, logger *slog.Logger) (*Reconciler, error) {
	if store == nil {
		return nil, errors.New("reconcile: store must not be nil")
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("reconcile: interval must be positive, got %s", cfg.Interval)
	}
	if cfg.Policy == nil {
		cfg.Policy = DefaultPolicy()
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("reconcile: invalid policy: %w", err)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:    store,
		policy:   cfg.Policy,
		interval: cfg.Interval,
		now:      cfg.Now,
		logger:   logger,
	}, nil
}

// Handle controls a running reconciliation loop. Stop is idempotent: it
// cancels the recurring timer, waits for a pass already in progress to
// finish, and returns once no further reads or writes can be issued.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop shuts the loop down. Stopping an already stopped handle is a no-op.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Start launches the recurring loop and returns its handle. One loop per
// process is expected; the caller owns the handle.
func (r *Reconciler) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go r.run(ctx, done)
	r.logger.Info("Reconciler started.", "interval", r.interval.String())
	return &Handle{cancel: cancel, done: done}
}

func (r *Reconciler) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Reconciler stopped.")
			return
		case <-ticker.C:
			// The pass runs on a detached context so that cancellation
			// between reading a record and writing it back cannot leave a
			// half-applied transition; the loop only exits between passes.
			r.Pass(context.WithoutCancel(ctx))
		}
	}
}

// Pass executes one reconciliation cycle. All failures are logged and
// contained; the recurring schedule is never disturbed by a bad pass.
func (r *Reconciler) Pass(ctx context.Context) {
	now := r.now()

	orders, err := r.store.ActiveOrders(ctx)
	if err != nil {
		r.logger.Error("Failed to read active orders, skipping them this pass.", "error", err)
	} else {
		r.advanceOrders(ctx, now, orders)
	}

	deliveries, err := r.store.ActiveDeliveries(ctx)
	if err != nil {
		r.logger.Error("Failed to read active deliveries, skipping them this pass.", "error", err)
	} else {
		r.advanceDeliveries(ctx, now, deliveries)
	}
}

func (r *Reconciler) advanceOrders(ctx context.Context, now time.Time, orders []models.Order) {
	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentWrites)
	for _, o := range orders {
		g.Go(func() error {
			logCtx := r.logger.With("orderId", o.ID, "status", o.Status)
			since, ok := statusSince(o.UpdatedAt, o.CreatedAt)
			if !ok {
				logCtx.Warn("Skipping record with no usable timestamp.")
				return nil
			}
			next, deliveredAt, ok := r.evaluate(logCtx, now, o.Status, since)
			if !ok {
				return nil
			}
			if err := r.store.SetOrderStatus(ctx, o.ID, next, deliveredAt); err != nil {
				logCtx.Error("Failed to write order status.", "next", next, "error", err)
				return nil
			}
			logCtx.Info("Order advanced.", "next", next)
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Reconciler) advanceDeliveries(ctx context.Context, now time.Time, deliveries []models.DeliveryAssignment) {
	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentWrites)
	for _, d := range deliveries {
		g.Go(func() error {
			logCtx := r.logger.With("deliveryId", d.ID, "status", d.Status)
			since, ok := statusSince(d.UpdatedAt, d.CreatedAt)
			if !ok {
				logCtx.Warn("Skipping record with no usable timestamp.")
				return nil
			}
			next, deliveredAt, ok := r.evaluate(logCtx, now, d.Status, since)
			if !ok {
				return nil
			}
			if err := r.store.SetDeliveryStatus(ctx, d.ID, next, deliveredAt); err != nil {
				logCtx.Error("Failed to write delivery status.", "next", next, "error", err)
				return nil
			}
			logCtx.Info("Delivery advanced.", "next", next)
			return nil
		})
	}
	_ = g.Wait()
}

// statusSince resolves when a record entered its current status. Records
// written before updatedAt existed fall back to createdAt; a record carrying
// neither is skipped rather than treated as infinitely overdue, since a zero
// time would auto-advance it on the very first tick.
func statusSince(updatedAt, createdAt time.Time) (time.Time, bool) {
	if !updatedAt.IsZero() {
		return updatedAt, true
	}
	if !createdAt.IsZero() {
		return createdAt, true
	}
	return time.Time{}, false
}

// evaluate applies the policy to one record. deliveredAt is non-nil exactly
// when the transition enters the delivered state.
func (r *Reconciler) evaluate(logCtx *slog.Logger, now time.Time, status models.OrderStatus, since time.Time) (models.OrderStatus, *time.Time, bool) {
	next, due, err := r.policy.Evaluate(status, now.Sub(since))
	if err != nil {
		logCtx.Warn("Skipping record with unexpected status.", "error", err)
		return "", nil, false
	}
	if !due {
		return "", nil, false
	}
	var deliveredAt *time.Time
	if next == models.OrderDelivered {
		t := now
		deliveredAt = &t
	}
	return next, deliveredAt, true
}
