// Package catalog manages the per-store product inventory.
package catalog

import "errors"

// Product belongs to exactly one store.
type Product struct {
	ID            int64   `json:"id"`
	StoreID       int64   `json:"-"`
	Barcode       *string `json:"barcode"`
	Name          string  `json:"name"`
	Brand         string  `json:"brand"`
	Category      string  `json:"category"`
	SizeML        int     `json:"size_ml"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
}

// CreateProductInput carries a new product submission.
type CreateProductInput struct {
	Name          string  `validate:"required,max=100"`
	Brand         string  `validate:"max=100"`
	Category      string  `validate:"max=50"`
	Barcode       string  `validate:"max=100"`
	SizeML        int     `validate:"gt=0"`
	Price         float64 `validate:"gte=0"`
	StockQuantity int     `validate:"gte=0"`
}

var (
	// ErrInvalidQuantity indicates a non-positive stock addition.
	ErrInvalidQuantity = errors.New("catalog: quantity to add must be positive")
	// ErrDuplicateBarcode indicates a barcode collision within the store.
	ErrDuplicateBarcode = errors.New("catalog: barcode already exists for this store")
)
