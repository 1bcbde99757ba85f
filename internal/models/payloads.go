package models

// These structs define the JSON payloads for the admin dashboard API.

// CreateProductRequest is the body for creating an inventory record.
type CreateProductRequest struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	UnitPrice     float64 `json:"unitPrice"`
	CurrentStock  int     `json:"currentStock"`
	MinStockAlert int     `json:"minStockAlert"`
}

// UpdateProductRequest carries a partial field update for a product. Nil
// fields are left untouched.
type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty"`
	Category      *string  `json:"category,omitempty"`
	UnitPrice     *float64 `json:"unitPrice,omitempty"`
	MinStockAlert *int     `json:"minStockAlert,omitempty"`
}

// AdjustStockRequest changes a product's stock by a signed delta
// (restock or correction).
type AdjustStockRequest struct {
	Delta int `json:"delta"`
}

// OrderStatusRequest is the body for a manual order or delivery status
// transition.
type OrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// CourierReviewRequest approves or rejects a courier application.
type CourierReviewRequest struct {
	State ReviewState `json:"state"`
}

// IDResponse returns the identifier of a newly created document.
type IDResponse struct {
	ID string `json:"id"`
}

// StatusResponse is the generic acknowledgement for mutation endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}
