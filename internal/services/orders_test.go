package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/freshlane/wholesale-admin/internal/models"
)

type fakeOrdersStore struct {
	orders map[string]models.Order
	writes int
}

func (f *fakeOrdersStore) GetOrder(ctx context.Context, id string) (models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, errors.New("not found")
	}
	return o, nil
}

func (f *fakeOrdersStore) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrdersStore) SetOrderStatus(ctx context.Context, id string, status models.OrderStatus, deliveredAt *time.Time) error {
	o := f.orders[id]
	o.Status = status
	if deliveredAt != nil {
		o.DeliveredAt = deliveredAt
	}
	f.orders[id] = o
	f.writes++
	return nil
}

func TestTransitionRules(t *testing.T) {
	tests := []struct {
		name    string
		current models.OrderStatus
		target  models.OrderStatus
		wantErr error
	}{
		{"confirm placed", models.OrderPlaced, models.OrderConfirmed, nil},
		{"skip ahead to delivered", models.OrderPlaced, models.OrderDelivered, nil},
		{"cancel live order", models.OrderOutForDelivery, models.OrderCancelled, nil},
		{"backward", models.OrderOutForDelivery, models.OrderConfirmed, ErrBackwardMovement},
		{"same status", models.OrderConfirmed, models.OrderConfirmed, ErrBackwardMovement},
		{"mutate delivered", models.OrderDelivered, models.OrderCancelled, ErrTerminalRecord},
		{"mutate cancelled", models.OrderCancelled, models.OrderConfirmed, ErrTerminalRecord},
		{"bogus target", models.OrderPlaced, "refunded", ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeOrdersStore{orders: map[string]models.Order{
				"o1": {ID: "o1", Status: tt.current},
			}}
			svc := NewOrders(store, nil)

			err := svc.Transition(context.Background(), "o1", tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Transition(%q -> %q) = %v, want %v", tt.current, tt.target, err, tt.wantErr)
			}
			if tt.wantErr == nil && store.orders["o1"].Status != tt.target {
				t.Fatalf("status = %q after transition, want %q", store.orders["o1"].Status, tt.target)
			}
			if tt.wantErr != nil && store.writes != 0 {
				t.Fatalf("rejected transition still wrote %d times", store.writes)
			}
		})
	}
}

func TestTransitionSetsDeliveredAtOnce(t *testing.T) {
	store := &fakeOrdersStore{orders: map[string]models.Order{
		"o1": {ID: "o1", Status: models.OrderOutForDelivery},
	}}
	svc := NewOrders(store, nil)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	if err := svc.Transition(context.Background(), "o1", models.OrderDelivered); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	got := store.orders["o1"]
	if got.DeliveredAt == nil || !got.DeliveredAt.Equal(fixed) {
		t.Fatalf("deliveredAt = %v, want %v", got.DeliveredAt, fixed)
	}

	// Terminal now; a second transition must be rejected without a write.
	writes := store.writes
	if err := svc.Transition(context.Background(), "o1", models.OrderCancelled); !errors.Is(err, ErrTerminalRecord) {
		t.Fatalf("expected ErrTerminalRecord, got %v", err)
	}
	if store.writes != writes {
		t.Fatal("terminal order was written again")
	}
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	svc := NewOrders(&fakeOrdersStore{orders: map[string]models.Order{}}, nil)
	if _, err := svc.List(context.Background(), "refunded"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
