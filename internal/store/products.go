package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/freshlane/wholesale-admin/internal/models"
)

// ErrInsufficientStock is returned when a stock adjustment would drive
// currentStock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductSnapshot is one full state of the products collection as observed by
// a live subscription. Err is set on the final event when the subscription
// terminates abnormally; no further snapshots follow it.
type ProductSnapshot struct {
	Products []models.Product
	Err      error
}

// WatchProducts subscribes to the products collection and delivers a full
// snapshot on every change. The returned channel closes when ctx is cancelled
// (a plain unsubscribe) or after a terminal feed error has been delivered.
func (c *Client) WatchProducts(ctx context.Context) <-chan ProductSnapshot {
	out := make(chan ProductSnapshot)
	go func() {
		defer close(out)
		snaps := c.fs.Collection(c.config.ProductsCollection).Snapshots(ctx)
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case out <- ProductSnapshot{Err: fmt.Errorf("products subscription failed: %w", err)}:
				case <-ctx.Done():
				}
				return
			}
			products, err := decodeProducts(snap.Documents)
			if err != nil {
				select {
				case out <- ProductSnapshot{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case out <- ProductSnapshot{Products: products}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func decodeProducts(it *firestore.DocumentIterator) ([]models.Product, error) {
	docs, err := it.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read product snapshot: %w", err)
	}
	products := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		products = appendDecodedProduct(products, doc.Ref.ID, doc.DataTo)
	}
	return products, nil
}

// appendDecodedProduct decodes one snapshot document into the product list.
// One malformed document must not disable the whole live view; it is dropped
// from the snapshot with a log and the subscription stays alive.
func appendDecodedProduct(products []models.Product, id string, decode func(any) error) []models.Product {
	var p models.Product
	if err := decode(&p); err != nil {
		slog.Warn("Skipping undecodable product document.", "productId", id, "error", err)
		return products
	}
	p.ID = id
	return append(products, p)
}

// CreateProduct adds a new inventory record and returns its assigned ID.
func (c *Client) CreateProduct(ctx context.Context, p models.Product) (string, error) {
	docRef, _, err := c.fs.Collection(c.config.ProductsCollection).Add(ctx, map[string]any{
		"name":          p.Name,
		"category":      p.Category,
		"unitPrice":     p.UnitPrice,
		"currentStock":  p.CurrentStock,
		"minStockAlert": p.MinStockAlert,
		"createdAt":     firestore.ServerTimestamp,
		"updatedAt":     firestore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create product: %w", err)
	}
	return docRef.ID, nil
}

// GetProduct reads a single product by document ID.
func (c *Client) GetProduct(ctx context.Context, id string) (models.Product, error) {
	doc, err := c.fs.Collection(c.config.ProductsCollection).Doc(id).Get(ctx)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to read product %s: %w", id, err)
	}
	var p models.Product
	if err := doc.DataTo(&p); err != nil {
		return models.Product{}, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	p.ID = doc.Ref.ID
	return p, nil
}

// ListProducts returns every product in the catalog.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	it := c.fs.Collection(c.config.ProductsCollection).OrderBy("name", firestore.Asc).Documents(ctx)
	defer it.Stop()

	var products []models.Product
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list products: %w", err)
		}
		var p models.Product
		if err := doc.DataTo(&p); err != nil {
			return nil, fmt.Errorf("failed to decode product %s: %w", doc.Ref.ID, err)
		}
		p.ID = doc.Ref.ID
		products = append(products, p)
	}
	return products, nil
}

// UpdateProductFields applies a partial field update to one product.
func (c *Client) UpdateProductFields(ctx context.Context, id string, updates []firestore.Update) error {
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})
	if _, err := c.fs.Collection(c.config.ProductsCollection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return nil
}

// AdjustProductStock changes currentStock by delta inside a transaction.
// The resulting stock is never allowed below zero.
func (c *Client) AdjustProductStock(ctx context.Context, id string, delta int) error {
	docRef := c.fs.Collection(c.config.ProductsCollection).Doc(id)
	err := c.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		var p models.Product
		if err := doc.DataTo(&p); err != nil {
			return err
		}
		next := p.CurrentStock + delta
		if next < 0 {
			return ErrInsufficientStock
		}
		return tx.Update(docRef, []firestore.Update{
			{Path: "currentStock", Value: next},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return err
		}
		return fmt.Errorf("failed to adjust stock of product %s: %w", id, err)
	}
	return nil
}

// DeleteProduct removes a product document entirely.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if _, err := c.fs.Collection(c.config.ProductsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}
