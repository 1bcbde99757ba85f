package models

import "time"

// OrderStatus is the lifecycle state of an order or delivery assignment in
// Firestore. Statuses only ever move forward along the progression below;
// cancellation is a terminal side exit applied by an admin, never
// automatically.
type OrderStatus string

const (
	OrderPlaced         OrderStatus = "placed"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderOutForDelivery OrderStatus = "out-for-delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// progression is the non-cancelled delivery path in order.
var progression = []OrderStatus{OrderPlaced, OrderConfirmed, OrderOutForDelivery, OrderDelivered}

// Known reports whether s is one of the recognized lifecycle statuses.
func (s OrderStatus) Known() bool {
	return s == OrderCancelled || s.StepIndex() >= 0
}

// Terminal reports whether s admits no further transition.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// StepIndex returns the position of s on the delivery path, or -1 for
// cancelled and unrecognized statuses.
func (s OrderStatus) StepIndex() int {
	for i, step := range progression {
		if s == step {
			return i
		}
	}
	return -1
}

// ActiveStatuses returns the non-terminal statuses, the candidate set for
// reconciliation reads.
func ActiveStatuses() []OrderStatus {
	return []OrderStatus{OrderPlaced, OrderConfirmed, OrderOutForDelivery}
}

// Product is an inventory record in the products collection.
type Product struct {
	ID            string    `firestore:"-"`
	Name          string    `firestore:"name,omitempty"`
	Category      string    `firestore:"category,omitempty"`
	UnitPrice     float64   `firestore:"unitPrice,omitempty"`
	CurrentStock  int       `firestore:"currentStock"`
	MinStockAlert int       `firestore:"minStockAlert"`
	CreatedAt     time.Time `firestore:"createdAt,omitempty"`
	UpdatedAt     time.Time `firestore:"updatedAt,omitempty"`
}

// LowStock reports whether the product should appear in the low-stock view.
// A product at exactly zero stock is out of stock, a distinct condition.
func (p Product) LowStock() bool {
	return p.CurrentStock > 0 && p.CurrentStock < p.MinStockAlert
}

// OutOfStock reports whether the product has no stock at all.
func (p Product) OutOfStock() bool {
	return p.CurrentStock == 0
}

// Order is a customer order tracked on the dashboard.
type Order struct {
	ID           string      `firestore:"-"`
	OrderNumber  string      `firestore:"orderNumber,omitempty"`
	CustomerName string      `firestore:"customerName,omitempty"`
	TotalAmount  float64     `firestore:"totalAmount,omitempty"`
	Status       OrderStatus `firestore:"status,omitempty"`
	CreatedAt    time.Time   `firestore:"createdAt,omitempty"`
	UpdatedAt    time.Time   `firestore:"updatedAt,omitempty"`
	DeliveredAt  *time.Time  `firestore:"deliveredAt,omitempty"`
}

// DeliveryAssignment links an order to a courier and tracks the delivery leg
// with the same lifecycle as the order itself.
type DeliveryAssignment struct {
	ID          string      `firestore:"-"`
	OrderID     string      `firestore:"orderId,omitempty"`
	CourierID   string      `firestore:"courierId,omitempty"`
	Status      OrderStatus `firestore:"status,omitempty"`
	CreatedAt   time.Time   `firestore:"createdAt,omitempty"`
	UpdatedAt   time.Time   `firestore:"updatedAt,omitempty"`
	DeliveredAt *time.Time  `firestore:"deliveredAt,omitempty"`
}

// ReviewState is the approval state of a courier application.
type ReviewState string

const (
	ReviewPending  ReviewState = "pending"
	ReviewApproved ReviewState = "approved"
	ReviewRejected ReviewState = "rejected"
)

// Courier is a delivery-personnel record awaiting or past review.
type Courier struct {
	ID          string      `firestore:"-"`
	Name        string      `firestore:"name,omitempty"`
	Phone       string      `firestore:"phone,omitempty"`
	Vehicle     string      `firestore:"vehicle,omitempty"`
	ReviewState ReviewState `firestore:"reviewState,omitempty"`
	CreatedAt   time.Time   `firestore:"createdAt,omitempty"`
	UpdatedAt   time.Time   `firestore:"updatedAt,omitempty"`
}

// SliderImage is a promotional banner shown on the storefront.
type SliderImage struct {
	ID        string    `firestore:"-"`
	Title     string    `firestore:"title,omitempty"`
	ImageURL  string    `firestore:"imageUrl,omitempty"`
	Active    bool      `firestore:"active"`
	CreatedAt time.Time `firestore:"createdAt,omitempty"`
}
