package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"

	"github.com/freshlane/wholesale-admin/internal/models"
)

// Validation errors surfaced to the API layer as bad requests.
var (
	ErrEmptyName     = errors.New("product name must not be empty")
	ErrNegativeValue = errors.New("value must not be negative")
)

// CatalogStore is the slice of the document store the catalog service needs.
type CatalogStore interface {
	CreateProduct(ctx context.Context, p models.Product) (string, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	UpdateProductFields(ctx context.Context, id string, updates []firestore.Update) error
	AdjustProductStock(ctx context.Context, id string, delta int) error
	DeleteProduct(ctx context.Context, id string) error
}

// CatalogService owns product CRUD and stock adjustments.
type CatalogService struct {
	store  CatalogStore
	logger *slog.Logger
}

// NewCatalog creates the catalog service.
func NewCatalog(store CatalogStore, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{store: store, logger: logger}
}

// Create validates and persists a new inventory record.
func (s *CatalogService) Create(ctx context.Context, req models.CreateProductRequest) (string, error) {
	if req.Name == "" {
		return "", ErrEmptyName
	}
	if req.UnitPrice < 0 || req.CurrentStock < 0 || req.MinStockAlert < 0 {
		return "", ErrNegativeValue
	}
	id, err := s.store.CreateProduct(ctx, models.Product{
		Name:          req.Name,
		Category:      req.Category,
		UnitPrice:     req.UnitPrice,
		CurrentStock:  req.CurrentStock,
		MinStockAlert: req.MinStockAlert,
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("Product created.", "productId", id, "name", req.Name)
	return id, nil
}

// Get returns one product.
func (s *CatalogService) Get(ctx context.Context, id string) (models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// List returns the whole catalog.
func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx)
}

// Update applies the non-nil fields of req to one product.
func (s *CatalogService) Update(ctx context.Context, id string, req models.UpdateProductRequest) error {
	var updates []firestore.Update
	if req.Name != nil {
		if *req.Name == "" {
			return ErrEmptyName
		}
		updates = append(updates, firestore.Update{Path: "name", Value: *req.Name})
	}
	if req.Category != nil {
		updates = append(updates, firestore.Update{Path: "category", Value: *req.Category})
	}
	if req.UnitPrice != nil {
		if *req.UnitPrice < 0 {
			return ErrNegativeValue
		}
		updates = append(updates, firestore.Update{Path: "unitPrice", Value: *req.UnitPrice})
	}
	if req.MinStockAlert != nil {
		if *req.MinStockAlert < 0 {
			return ErrNegativeValue
		}
		updates = append(updates, firestore.Update{Path: "minStockAlert", Value: *req.MinStockAlert})
	}
	if len(updates) == 0 {
		return fmt.Errorf("no fields to update")
	}
	return s.store.UpdateProductFields(ctx, id, updates)
}

// AdjustStock applies a signed stock delta (restock or correction). The store
// rejects adjustments that would drive stock negative.
func (s *CatalogService) AdjustStock(ctx context.Context, id string, delta int) error {
	if delta == 0 {
		return nil
	}
	if err := s.store.AdjustProductStock(ctx, id, delta); err != nil {
		return err
	}
	s.logger.Info("Stock adjusted.", "productId", id, "delta", delta)
	return nil
}

// Delete removes a product from the catalog.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deleted.", "productId", id)
	return nil
}
