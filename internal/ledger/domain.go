// Package ledger exposes the per-store sales history. Sales are written only
// by the billing transaction and are immutable afterwards.
package ledger

import "time"

// Sale is one recorded bill with its line items.
type Sale struct {
	ID          int64
	StoreID     int64
	TotalAmount float64
	SaleDate    time.Time
	Items       []SaleItem
}

// SaleItem records the quantity and the product price at the moment of sale.
// PriceAtSale is a snapshot, decoupled from later product price edits.
type SaleItem struct {
	ID          int64
	ProductID   int64
	ProductName string
	Quantity    int
	PriceAtSale float64
}
