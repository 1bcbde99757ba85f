package reconcile

import (
	"errors"
	"testing"
	"time"

	"github.com/freshlane/wholesale-admin/internal/models"
)

func TestPolicyEvaluate(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name     string
		status   models.OrderStatus
		elapsed  time.Duration
		wantNext models.OrderStatus
		wantOK   bool
		wantErr  bool
	}{
		{"placed before threshold", models.OrderPlaced, 30 * time.Minute, "", false, false},
		{"placed at threshold", models.OrderPlaced, time.Hour, models.OrderConfirmed, true, false},
		{"out for delivery overdue", models.OrderOutForDelivery, 3 * time.Hour, models.OrderDelivered, true, false},
		{"confirmed has no rule", models.OrderConfirmed, 100 * time.Hour, "", false, false},
		{"delivered is terminal", models.OrderDelivered, 100 * time.Hour, "", false, false},
		{"cancelled is terminal", models.OrderCancelled, 100 * time.Hour, "", false, false},
		{"unknown status", models.OrderStatus("refunded"), time.Hour, "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok, err := policy.Evaluate(tt.status, tt.elapsed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownStatus) {
				t.Fatalf("err = %v, want ErrUnknownStatus", err)
			}
			if ok != tt.wantOK || next != tt.wantNext {
				t.Fatalf("Evaluate(%q, %s) = (%q, %v), want (%q, %v)",
					tt.status, tt.elapsed, next, ok, tt.wantNext, tt.wantOK)
			}
		})
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		wantOK bool
	}{
		{"default", DefaultPolicy(), true},
		{"backward", Policy{models.OrderConfirmed: {Next: models.OrderPlaced, After: time.Hour}}, false},
		{"self loop", Policy{models.OrderPlaced: {Next: models.OrderPlaced, After: time.Hour}}, false},
		{"out of terminal", Policy{models.OrderDelivered: {Next: models.OrderDelivered, After: time.Hour}}, false},
		{"auto cancel", Policy{models.OrderPlaced: {Next: models.OrderCancelled, After: time.Hour}}, false},
		{"unknown source", Policy{"refunded": {Next: models.OrderDelivered, After: time.Hour}}, false},
		{"zero duration", Policy{models.OrderPlaced: {Next: models.OrderConfirmed}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err == nil) != tt.wantOK {
				t.Fatalf("Validate() = %v, want ok=%v", err, tt.wantOK)
			}
		})
	}
}
