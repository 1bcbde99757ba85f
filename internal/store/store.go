// Package store wraps the Firestore collections backing the dashboard behind
// typed reads, partial field writes, and snapshot subscriptions. It is the
// only package that talks to Firestore directly; everything above it depends
// on narrow consumer-side interfaces satisfied by Client.
package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/freshlane/wholesale-admin/internal/gcp"
	"github.com/freshlane/wholesale-admin/internal/models"
)

// Config names the Firestore collections the dashboard reads and writes.
type Config struct {
	ProductsCollection   string
	OrdersCollection     string
	DeliveriesCollection string
	CouriersCollection   string
	SlidersCollection    string
}

// ConfigFromEnv builds a Config from FIRESTORE_*_COLLECTION variables,
// falling back to the default collection names.
func ConfigFromEnv() Config {
	return Config{
		ProductsCollection:   gcp.GetEnv("FIRESTORE_PRODUCTS_COLLECTION", "products"),
		OrdersCollection:     gcp.GetEnv("FIRESTORE_ORDERS_COLLECTION", "orders"),
		DeliveriesCollection: gcp.GetEnv("FIRESTORE_DELIVERIES_COLLECTION", "deliveries"),
		CouriersCollection:   gcp.GetEnv("FIRESTORE_COURIERS_COLLECTION", "couriers"),
		SlidersCollection:    gcp.GetEnv("FIRESTORE_SLIDERS_COLLECTION", "sliders"),
	}
}

// Client is the document-store collaborator.
type Client struct {
	fs     *firestore.Client
	config Config
}

// New wraps an existing Firestore client.
func New(fs *firestore.Client, config Config) *Client {
	return &Client{fs: fs, config: config}
}

// activeStatusStrings is the Firestore "in" operand for candidate queries.
func activeStatusStrings() []string {
	statuses := models.ActiveStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// ActiveOrders returns every order not yet in a terminal state. Terminal
// orders are excluded by the query itself, so the reconciler never reads them.
func (c *Client) ActiveOrders(ctx context.Context) ([]models.Order, error) {
	it := c.fs.Collection(c.config.OrdersCollection).
		Where("status", "in", activeStatusStrings()).
		Documents(ctx)
	defer it.Stop()

	var orders []models.Order
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read active orders: %w", err)
		}
		var o models.Order
		if err := doc.DataTo(&o); err != nil {
			return nil, fmt.Errorf("failed to decode order %s: %w", doc.Ref.ID, err)
		}
		o.ID = doc.Ref.ID
		orders = append(orders, o)
	}
	return orders, nil
}

// ActiveDeliveries returns every delivery assignment not yet in a terminal
// state.
func (c *Client) ActiveDeliveries(ctx context.Context) ([]models.DeliveryAssignment, error) {
	it := c.fs.Collection(c.config.DeliveriesCollection).
		Where("status", "in", activeStatusStrings()).
		Documents(ctx)
	defer it.Stop()

	var assignments []models.DeliveryAssignment
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read active deliveries: %w", err)
		}
		var d models.DeliveryAssignment
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to decode delivery %s: %w", doc.Ref.ID, err)
		}
		d.ID = doc.Ref.ID
		assignments = append(assignments, d)
	}
	return assignments, nil
}

// SetOrderStatus writes a new status for one order. The store assigns
// updatedAt on write; deliveredAt is only ever written on the transition into
// the delivered state.
func (c *Client) SetOrderStatus(ctx context.Context, id string, status models.OrderStatus, deliveredAt *time.Time) error {
	return c.setStatus(ctx, c.config.OrdersCollection, id, status, deliveredAt)
}

// SetDeliveryStatus writes a new status for one delivery assignment.
func (c *Client) SetDeliveryStatus(ctx context.Context, id string, status models.OrderStatus, deliveredAt *time.Time) error {
	return c.setStatus(ctx, c.config.DeliveriesCollection, id, status, deliveredAt)
}

func (c *Client) setStatus(ctx context.Context, collection, id string, status models.OrderStatus, deliveredAt *time.Time) error {
	updates := []firestore.Update{
		{Path: "status", Value: string(status)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	if deliveredAt != nil {
		updates = append(updates, firestore.Update{Path: "deliveredAt", Value: *deliveredAt})
	}
	if _, err := c.fs.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update status of %s/%s: %w", collection, id, err)
	}
	return nil
}

// GetOrder reads a single order by document ID.
func (c *Client) GetOrder(ctx context.Context, id string) (models.Order, error) {
	doc, err := c.fs.Collection(c.config.OrdersCollection).Doc(id).Get(ctx)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to read order %s: %w", id, err)
	}
	var o models.Order
	if err := doc.DataTo(&o); err != nil {
		return models.Order{}, fmt.Errorf("failed to decode order %s: %w", id, err)
	}
	o.ID = doc.Ref.ID
	return o, nil
}

// ListOrders returns orders filtered by status, or all orders when status is
// empty, newest first.
func (c *Client) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	query := c.fs.Collection(c.config.OrdersCollection).Query
	if status != "" {
		query = query.Where("status", "==", string(status))
	} else {
		query = query.OrderBy("createdAt", firestore.Desc)
	}
	it := query.Documents(ctx)
	defer it.Stop()

	var orders []models.Order
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list orders: %w", err)
		}
		var o models.Order
		if err := doc.DataTo(&o); err != nil {
			return nil, fmt.Errorf("failed to decode order %s: %w", doc.Ref.ID, err)
		}
		o.ID = doc.Ref.ID
		orders = append(orders, o)
	}
	return orders, nil
}
