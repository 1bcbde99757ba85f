package alert

import (
	"context"
	"errors"
	"testing"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/freshlane/wholesale-admin/internal/models"
)

type fakeEmitter struct {
	events  []cloudevents.Event
	failFor map[string]error
}

func newFakeEmitter() *fakeEmitter {
	return &fakeEmitter{failFor: make(map[string]error)}
}

func (f *fakeEmitter) Emit(ctx context.Context, e cloudevents.Event) error {
	var payload LowStockAlert
	if err := e.DataAs(&payload); err != nil {
		return err
	}
	if err := f.failFor[payload.ProductID]; err != nil {
		return err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEmitter) productIDs(t *testing.T) []string {
	t.Helper()
	ids := make([]string, 0, len(f.events))
	for _, e := range f.events {
		var payload LowStockAlert
		if err := e.DataAs(&payload); err != nil {
			t.Fatalf("DataAs: %v", err)
		}
		ids = append(ids, payload.ProductID)
	}
	return ids
}

func product(id string, current, min int) models.Product {
	return models.Product{ID: id, Name: "p-" + id, CurrentStock: current, MinStockAlert: min}
}

func TestPublishAlertsOnlyOnEntry(t *testing.T) {
	emitter := newFakeEmitter()
	p := NewPublisher(emitter, "//test", nil)
	ctx := context.Background()

	p.publish(ctx, []models.Product{product("1", 5, 10)})
	p.publish(ctx, []models.Product{product("1", 4, 10), product("2", 2, 10)})
	p.publish(ctx, []models.Product{product("1", 3, 10), product("2", 1, 10)})

	got := emitter.productIDs(t)
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("alerted products = %v, want [1 2]", got)
	}
}

func TestPublishReAlertsAfterRecovery(t *testing.T) {
	emitter := newFakeEmitter()
	p := NewPublisher(emitter, "//test", nil)
	ctx := context.Background()

	p.publish(ctx, []models.Product{product("1", 5, 10)})
	// Restocked above threshold, then low again.
	p.publish(ctx, nil)
	p.publish(ctx, []models.Product{product("1", 5, 10)})

	if got := emitter.productIDs(t); len(got) != 2 {
		t.Fatalf("alerted %v times, want re-alert after recovery", got)
	}
}

func TestPublishRetriesFailedEmitOnNextView(t *testing.T) {
	emitter := newFakeEmitter()
	emitter.failFor["1"] = errors.New("sink down")
	p := NewPublisher(emitter, "//test", nil)
	ctx := context.Background()

	p.publish(ctx, []models.Product{product("1", 5, 10)})
	if len(emitter.events) != 0 {
		t.Fatalf("emit succeeded unexpectedly: %v", emitter.productIDs(t))
	}

	delete(emitter.failFor, "1")
	p.publish(ctx, []models.Product{product("1", 5, 10)})
	if got := emitter.productIDs(t); len(got) != 1 || got[0] != "1" {
		t.Fatalf("alerted products = %v, want retry for product 1", got)
	}
}

func TestEventShape(t *testing.T) {
	emitter := newFakeEmitter()
	p := NewPublisher(emitter, "//wholesale-admin/test", nil)

	p.publish(context.Background(), []models.Product{product("1", 5, 10)})

	if len(emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(emitter.events))
	}
	e := emitter.events[0]
	if e.Type() != EventType {
		t.Errorf("type = %q, want %q", e.Type(), EventType)
	}
	if e.Source() != "//wholesale-admin/test" {
		t.Errorf("source = %q", e.Source())
	}
	if e.ID() == "" {
		t.Error("event has no ID")
	}
	var payload LowStockAlert
	if err := e.DataAs(&payload); err != nil {
		t.Fatalf("DataAs: %v", err)
	}
	if payload.CurrentStock != 5 || payload.MinStockAlert != 10 {
		t.Errorf("payload = %+v", payload)
	}
}
