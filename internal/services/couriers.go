package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/freshlane/wholesale-admin/internal/models"
)

// ErrInvalidReview is returned for review outcomes other than approval or
// rejection.
var ErrInvalidReview = errors.New("review outcome must be approved or rejected")

// CouriersStore is the slice of the document store the courier service needs.
type CouriersStore interface {
	GetCourier(ctx context.Context, id string) (models.Courier, error)
	ListCouriers(ctx context.Context, state models.ReviewState) ([]models.Courier, error)
	SetCourierReviewState(ctx context.Context, id string, state models.ReviewState) error
}

// CouriersService owns the delivery-personnel approval workflow.
type CouriersService struct {
	store  CouriersStore
	logger *slog.Logger
}

// NewCouriers creates the courier service.
func NewCouriers(store CouriersStore, logger *slog.Logger) *CouriersService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CouriersService{store: store, logger: logger}
}

// List returns couriers, optionally filtered by review state.
func (s *CouriersService) List(ctx context.Context, state models.ReviewState) ([]models.Courier, error) {
	return s.store.ListCouriers(ctx, state)
}

// Review records the outcome of a courier application. Re-reviewing is
// allowed so a mistaken rejection can be corrected.
func (s *CouriersService) Review(ctx context.Context, id string, outcome models.ReviewState) error {
	if outcome != models.ReviewApproved && outcome != models.ReviewRejected {
		return fmt.Errorf("%w: %q", ErrInvalidReview, outcome)
	}
	courier, err := s.store.GetCourier(ctx, id)
	if err != nil {
		return err
	}
	if courier.ReviewState == outcome {
		return nil
	}
	if err := s.store.SetCourierReviewState(ctx, id, outcome); err != nil {
		return err
	}
	s.logger.Info("Courier reviewed.", "courierId", id, "from", courier.ReviewState, "to", outcome)
	return nil
}
