package billing

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/madira-pos/madira/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// Service coordinates the bill-processing transaction.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ProcessBill atomically decrements stock for every line, records the sale
// with one item per line and returns the new sale's ID. Preconditions are
// checked against stock re-read inside the transaction; any failure aborts
// the whole bill and no state changes.
func (s *Service) ProcessBill(ctx context.Context, storeID int64, items []BillItem) (int64, error) {
	if len(items) == 0 {
		return 0, ErrEmptyOrder
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return 0, ErrInvalidQuantity
		}
	}

	var saleID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var total float64
		type settledLine struct {
			productID   int64
			quantity    int
			priceAtSale float64
		}
		settled := make([]settledLine, 0, len(items))

		for i, item := range items {
			product, err := tx.GetProductForUpdate(ctx, storeID, item.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return &ProductNotFoundError{Line: i, ProductID: item.ProductID}
				}
				return err
			}
			if product.StockQuantity < item.Quantity {
				return &InsufficientStockError{
					Line:        i,
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   item.Quantity,
					Available:   product.StockQuantity,
				}
			}
			if err := tx.DecrementStock(ctx, product.ID, item.Quantity); err != nil {
				return err
			}
			total += product.Price * float64(item.Quantity)
			settled = append(settled, settledLine{
				productID:   product.ID,
				quantity:    item.Quantity,
				priceAtSale: product.Price,
			})
		}

		id, err := tx.InsertSale(ctx, storeID, round2(total), s.now().UTC())
		if err != nil {
			return err
		}
		for _, line := range settled {
			if err := tx.InsertSaleItem(ctx, id, line.productID, line.quantity, line.priceAtSale); err != nil {
				return err
			}
		}
		saleID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saleID, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
