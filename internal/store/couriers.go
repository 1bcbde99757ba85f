package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/freshlane/wholesale-admin/internal/models"
)

// GetCourier reads a single courier by document ID.
func (c *Client) GetCourier(ctx context.Context, id string) (models.Courier, error) {
	doc, err := c.fs.Collection(c.config.CouriersCollection).Doc(id).Get(ctx)
	if err != nil {
		return models.Courier{}, fmt.Errorf("failed to read courier %s: %w", id, err)
	}
	var courier models.Courier
	if err := doc.DataTo(&courier); err != nil {
		return models.Courier{}, fmt.Errorf("failed to decode courier %s: %w", id, err)
	}
	courier.ID = doc.Ref.ID
	return courier, nil
}

// ListCouriers returns couriers filtered by review state, or all couriers
// when state is empty.
func (c *Client) ListCouriers(ctx context.Context, state models.ReviewState) ([]models.Courier, error) {
	query := c.fs.Collection(c.config.CouriersCollection).Query
	if state != "" {
		query = query.Where("reviewState", "==", string(state))
	}
	it := query.Documents(ctx)
	defer it.Stop()

	var couriers []models.Courier
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list couriers: %w", err)
		}
		var courier models.Courier
		if err := doc.DataTo(&courier); err != nil {
			return nil, fmt.Errorf("failed to decode courier %s: %w", doc.Ref.ID, err)
		}
		courier.ID = doc.Ref.ID
		couriers = append(couriers, courier)
	}
	return couriers, nil
}

// SetCourierReviewState records the outcome of a courier application review.
func (c *Client) SetCourierReviewState(ctx context.Context, id string, state models.ReviewState) error {
	updates := []firestore.Update{
		{Path: "reviewState", Value: string(state)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	if _, err := c.fs.Collection(c.config.CouriersCollection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update review state of courier %s: %w", id, err)
	}
	return nil
}
