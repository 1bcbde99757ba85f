// Package alert pushes low-stock notifications to an external sink.
//
// The publisher tails the derived low-stock view and emits one CloudEvent per
// product that newly enters low stock. A product that stays low across
// snapshots is not re-announced; leaving and re-entering low stock produces a
// fresh alert.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/freshlane/wholesale-admin/internal/lowstock"
	"github.com/freshlane/wholesale-admin/internal/models"
)

// EventType identifies low-stock CloudEvents.
const EventType = "com.freshlane.inventory.low-stock"

// LowStockAlert is the event payload.
type LowStockAlert struct {
	ProductID     string `json:"productId"`
	Name          string `json:"name"`
	CurrentStock  int    `json:"currentStock"`
	MinStockAlert int    `json:"minStockAlert"`
}

// Emitter delivers a composed event to the sink.
type Emitter interface {
	Emit(ctx context.Context, e cloudevents.Event) error
}

// Publisher diffs successive low-stock views and emits alerts for newcomers.
type Publisher struct {
	emitter Emitter
	source  string
	logger  *slog.Logger
	low     map[string]bool
}

// NewPublisher creates a publisher. source becomes the CloudEvents source
// attribute, e.g. "//wholesale-admin/dashboard".
func NewPublisher(emitter Emitter, source string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		emitter: emitter,
		source:  source,
		logger:  logger,
		low:     make(map[string]bool),
	}
}

// Run consumes view events until the channel closes or the feed reports a
// terminal error. It is meant to be run in its own goroutine for the life of
// the process.
func (p *Publisher) Run(ctx context.Context, views <-chan lowstock.Event) {
	for ev := range views {
		if ev.Err != nil {
			p.logger.Error("Low-stock view ended, alerting disabled until restart.", "error", ev.Err)
			return
		}
		p.publish(ctx, ev.Low)
	}
}

// publish emits an alert for every product present in the new view but absent
// from the previous one. A failed emit leaves the product unmarked so the
// next snapshot retries it.
func (p *Publisher) publish(ctx context.Context, view []models.Product) {
	current := make(map[string]bool, len(view))
	for _, product := range view {
		current[product.ID] = true
		if p.low[product.ID] {
			continue
		}
		if err := p.emitter.Emit(ctx, p.newEvent(product)); err != nil {
			p.logger.Error("Failed to emit low-stock alert.", "productId", product.ID, "error", err)
			delete(current, product.ID)
		}
	}
	p.low = current
}

func (p *Publisher) newEvent(product models.Product) cloudevents.Event {
	e := cloudevents.NewEvent()
	e.SetID(uuid.NewString())
	e.SetType(EventType)
	e.SetSource(p.source)
	e.SetTime(time.Now().UTC())
	_ = e.SetData(cloudevents.ApplicationJSON, LowStockAlert{
		ProductID:     product.ID,
		Name:          product.Name,
		CurrentStock:  product.CurrentStock,
		MinStockAlert: product.MinStockAlert,
	})
	return e
}

// httpEmitter sends events to a fixed HTTP sink.
type httpEmitter struct {
	client cloudevents.Client
	target string
}

// NewHTTPEmitter builds an Emitter that delivers events to sinkURL with the
// CloudEvents HTTP binding.
func NewHTTPEmitter(sinkURL string) (Emitter, error) {
	if sinkURL == "" {
		return nil, fmt.Errorf("sink URL must not be empty")
	}
	client, err := cloudevents.NewClientHTTP()
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudevents client: %w", err)
	}
	return &httpEmitter{client: client, target: sinkURL}, nil
}

func (h *httpEmitter) Emit(ctx context.Context, e cloudevents.Event) error {
	ctx = cloudevents.ContextWithTarget(ctx, h.target)
	if result := h.client.Send(ctx, e); cloudevents.IsUndelivered(result) {
		return fmt.Errorf("failed to deliver event to %s: %w", h.target, result)
	}
	return nil
}
