package store

import (
	"errors"
	"testing"

	"github.com/freshlane/wholesale-admin/internal/models"
)

func decodeAs(p models.Product) func(any) error {
	return func(v any) error {
		*(v.(*models.Product)) = p
		return nil
	}
}

func TestAppendDecodedProductSkipsMalformedDocuments(t *testing.T) {
	var products []models.Product
	products = appendDecodedProduct(products, "p1", decodeAs(models.Product{Name: "rice", CurrentStock: 5, MinStockAlert: 10}))
	products = appendDecodedProduct(products, "bad", func(any) error {
		return errors.New("firestore: cannot set field currentStock")
	})
	products = appendDecodedProduct(products, "p2", decodeAs(models.Product{Name: "flour", CurrentStock: 3, MinStockAlert: 10}))

	if len(products) != 2 {
		t.Fatalf("got %d products, want the malformed one dropped: %+v", len(products), products)
	}
	if products[0].ID != "p1" || products[1].ID != "p2" {
		t.Fatalf("products = %+v, want p1 and p2 in snapshot order", products)
	}
}

func TestAppendDecodedProductSetsDocumentID(t *testing.T) {
	products := appendDecodedProduct(nil, "p9", decodeAs(models.Product{Name: "oats"}))
	if len(products) != 1 || products[0].ID != "p9" {
		t.Fatalf("products = %+v, want document ID p9 assigned", products)
	}
}
