// Package lowstock derives the live low-stock view from the product feed.
//
// The monitor consumes full snapshots of the products collection and, on each
// one, replaces the derived view with the subset of products whose stock has
// fallen below their alert threshold but has not reached zero. The view is
// recomputed wholesale per snapshot; there is no incremental patching and no
// dependency on history, so any fresh subscription is complete from its first
// snapshot.
package lowstock

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/freshlane/wholesale-admin/internal/models"
	"github.com/freshlane/wholesale-admin/internal/store"
)

// Feed is the upstream subscription the monitor consumes. *store.Client
// satisfies it.
type Feed interface {
	WatchProducts(ctx context.Context) <-chan store.ProductSnapshot
}

// Event is one update of the derived low-stock view. When the upstream feed
// fails, the final event carries Err and the channel closes; the view is
// unavailable from then on and the caller decides whether to resubscribe.
type Event struct {
	Low []models.Product
	Err error
}

// Monitor republishes the low-stock subset of every product snapshot.
type Monitor struct {
	feed   Feed
	logger *slog.Logger
}

// NewMonitor creates a monitor over the given feed.
func NewMonitor(feed Feed, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{feed: feed, logger: logger}
}

// Watch subscribes to the product feed and emits a derived view per upstream
// snapshot. Cancelling ctx unsubscribes upstream and closes the returned
// channel without a terminal error event.
func (m *Monitor) Watch(ctx context.Context) <-chan Event {
	in := m.feed.WatchProducts(ctx)
	out := make(chan Event)
	go func() {
		defer close(out)
		for snap := range in {
			if snap.Err != nil {
				m.logger.Error("Product feed terminated, low-stock view unavailable.", "error", snap.Err)
				select {
				case out <- Event{Err: fmt.Errorf("low-stock view unavailable: %w", snap.Err)}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case out <- Event{Low: Filter(snap.Products)}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Filter returns the products currently in low stock, preserving the order of
// the input snapshot. Out-of-stock products are excluded; running out entirely
// is a distinct condition from running low.
func Filter(products []models.Product) []models.Product {
	low := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.LowStock() {
			low = append(low, p)
		}
	}
	return low
}
