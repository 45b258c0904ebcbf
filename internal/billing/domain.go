// Package billing implements the bill-processing transaction: all stock
// decrements, the sale row and its line items are committed atomically or
// not at all.
package billing

import (
	"errors"
	"fmt"
	"time"
)

// BillItem is one requested line of a bill.
type BillItem struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"quantity"`
}

// Product is the slice of a catalog product the transaction reads under lock.
type Product struct {
	ID            int64
	Name          string
	Price         float64
	StockQuantity int
}

// Sale is the persisted result of a processed bill.
type Sale struct {
	ID          int64
	StoreID     int64
	TotalAmount float64
	SaleDate    time.Time
}

// Precondition failures. All are terminal and user correctable.
var (
	// ErrEmptyOrder indicates a bill with no lines.
	ErrEmptyOrder = errors.New("billing: empty bill")
	// ErrInvalidQuantity indicates a non-positive line quantity.
	ErrInvalidQuantity = errors.New("billing: quantity must be positive")
	// ErrProductNotFound indicates a line referencing a product outside the caller's store.
	ErrProductNotFound = errors.New("billing: product not found")
	// ErrInsufficientStock indicates a line requesting more than the current stock.
	ErrInsufficientStock = errors.New("billing: insufficient stock")
)

// ProductNotFoundError names the offending line.
type ProductNotFoundError struct {
	Line      int
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("billing: line %d: product %d not found", e.Line+1, e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// InsufficientStockError names the offending product and quantities.
type InsufficientStockError struct {
	Line        int
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("billing: not enough stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// IsPrecondition reports whether the error is a user-correctable precondition
// failure rather than an unexpected persistence failure.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrEmptyOrder) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrInsufficientStock)
}
