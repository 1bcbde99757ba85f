package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/freshlane/wholesale-admin/internal/models"
)

// Transition errors surfaced to the API layer.
var (
	ErrInvalidStatus    = errors.New("unrecognized status")
	ErrTerminalRecord   = errors.New("record is in a terminal state")
	ErrBackwardMovement = errors.New("status may only move forward")
)

// OrdersStore is the slice of the document store the orders service needs.
type OrdersStore interface {
	GetOrder(ctx context.Context, id string) (models.Order, error)
	ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	SetOrderStatus(ctx context.Context, id string, status models.OrderStatus, deliveredAt *time.Time) error
}

// OrdersService owns admin-driven order administration. Manual transitions
// obey the same forward-only machine as the reconciler, with one addition:
// an admin may cancel any non-terminal order.
type OrdersService struct {
	store  OrdersStore
	logger *slog.Logger
	now    func() time.Time
}

// NewOrders creates the orders service.
func NewOrders(store OrdersStore, logger *slog.Logger) *OrdersService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrdersService{store: store, logger: logger, now: time.Now}
}

// List returns orders, optionally filtered by status.
func (s *OrdersService) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.Known() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.store.ListOrders(ctx, status)
}

// Transition applies a manual status change to one order.
func (s *OrdersService) Transition(ctx context.Context, id string, target models.OrderStatus) error {
	if !target.Known() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := checkTransition(order.Status, target); err != nil {
		return err
	}
	var deliveredAt *time.Time
	if target == models.OrderDelivered {
		t := s.now()
		deliveredAt = &t
	}
	if err := s.store.SetOrderStatus(ctx, id, target, deliveredAt); err != nil {
		return err
	}
	s.logger.Info("Order transitioned by admin.", "orderId", id, "from", order.Status, "to", target)
	return nil
}

// checkTransition enforces the lifecycle rules shared by all manual moves:
// terminal records are immutable, cancellation is allowed from any live
// state, and everything else must step forward on the delivery path.
func checkTransition(current, target models.OrderStatus) error {
	if !current.Known() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, current)
	}
	if current.Terminal() {
		return fmt.Errorf("%w: %q", ErrTerminalRecord, current)
	}
	if target == models.OrderCancelled {
		return nil
	}
	if target.StepIndex() <= current.StepIndex() {
		return fmt.Errorf("%w: %q -> %q", ErrBackwardMovement, current, target)
	}
	return nil
}
