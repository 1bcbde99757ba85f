package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/freshlane/wholesale-admin/internal/models"
)

// CreateSlider records a promotional slider image and returns its ID.
func (c *Client) CreateSlider(ctx context.Context, s models.SliderImage) (string, error) {
	docRef, _, err := c.fs.Collection(c.config.SlidersCollection).Add(ctx, map[string]any{
		"title":     s.Title,
		"imageUrl":  s.ImageURL,
		"active":    s.Active,
		"createdAt": firestore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create slider: %w", err)
	}
	return docRef.ID, nil
}

// ListSliders returns all slider documents, newest first.
func (c *Client) ListSliders(ctx context.Context) ([]models.SliderImage, error) {
	it := c.fs.Collection(c.config.SlidersCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer it.Stop()

	var sliders []models.SliderImage
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list sliders: %w", err)
		}
		var s models.SliderImage
		if err := doc.DataTo(&s); err != nil {
			return nil, fmt.Errorf("failed to decode slider %s: %w", doc.Ref.ID, err)
		}
		s.ID = doc.Ref.ID
		sliders = append(sliders, s)
	}
	return sliders, nil
}

// SetSliderActive toggles whether a slider is shown on the storefront.
func (c *Client) SetSliderActive(ctx context.Context, id string, active bool) error {
	updates := []firestore.Update{{Path: "active", Value: active}}
	if _, err := c.fs.Collection(c.config.SlidersCollection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update slider %s: %w", id, err)
	}
	return nil
}
