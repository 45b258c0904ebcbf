package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/madira-pos/madira/internal/shared"
)

type memoryProduct struct {
	Product
	storeID int64
}

type memoryRepo struct {
	products  map[int64]*memoryProduct
	sales     []Sale
	saleItems map[int64][]memorySaleItem
	nextSale  int64
}

type memorySaleItem struct {
	productID   int64
	quantity    int
	priceAtSale float64
}

type memoryTx struct {
	repo   *memoryRepo
	staged map[int64]int
	sales  []Sale
	items  map[int64][]memorySaleItem
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products:  make(map[int64]*memoryProduct),
		saleItems: make(map[int64][]memorySaleItem),
	}
}

func (r *memoryRepo) addProduct(storeID, id int64, name string, price float64, stock int) {
	r.products[id] = &memoryProduct{
		Product: Product{ID: id, Name: name, Price: price, StockQuantity: stock},
		storeID: storeID,
	}
}

// WithTx stages changes and applies them only when the callback succeeds,
// mirroring transactional rollback.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{
		repo:   r,
		staged: make(map[int64]int),
		items:  make(map[int64][]memorySaleItem),
		nextID: r.nextSale,
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, delta := range tx.staged {
		r.products[id].StockQuantity -= delta
	}
	r.sales = append(r.sales, tx.sales...)
	for id, items := range tx.items {
		r.saleItems[id] = items
	}
	r.nextSale = tx.nextID
	return nil
}

func (tx *memoryTx) GetProductForUpdate(ctx context.Context, storeID, productID int64) (Product, error) {
	p, ok := tx.repo.products[productID]
	if !ok || p.storeID != storeID {
		return Product{}, shared.ErrNotFound
	}
	product := p.Product
	product.StockQuantity -= tx.staged[productID]
	return product, nil
}

func (tx *memoryTx) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	tx.staged[productID] += quantity
	return nil
}

func (tx *memoryTx) InsertSale(ctx context.Context, storeID int64, total float64, at time.Time) (int64, error) {
	tx.nextID++
	tx.sales = append(tx.sales, Sale{ID: tx.nextID, StoreID: storeID, TotalAmount: total, SaleDate: at})
	return tx.nextID, nil
}

func (tx *memoryTx) InsertSaleItem(ctx context.Context, saleID, productID int64, quantity int, priceAtSale float64) error {
	tx.items[saleID] = append(tx.items[saleID], memorySaleItem{productID: productID, quantity: quantity, priceAtSale: priceAtSale})
	return nil
}

func TestProcessBillDecrementsStockAndRecordsSale(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(1, 10, "Old Monk 750", 10.00, 5)
	repo.addProduct(1, 11, "Kingfisher 650", 2.50, 8)

	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	saleID, err := svc.ProcessBill(context.Background(), 1, []BillItem{
		{ProductID: 10, Quantity: 3},
		{ProductID: 11, Quantity: 2},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), saleID)

	require.Equal(t, 2, repo.products[10].StockQuantity)
	require.Equal(t, 6, repo.products[11].StockQuantity)

	require.Len(t, repo.sales, 1)
	require.InDelta(t, 35.00, repo.sales[0].TotalAmount, 0.0001)
	require.Equal(t, int64(1), repo.sales[0].StoreID)

	items := repo.saleItems[saleID]
	require.Len(t, items, 2)
	require.InDelta(t, 10.00, items[0].priceAtSale, 0.0001)
	require.InDelta(t, 2.50, items[1].priceAtSale, 0.0001)
}

func TestProcessBillIsAtomicOnInsufficientStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(1, 10, "Old Monk 750", 10.00, 5)
	repo.addProduct(1, 11, "Kingfisher 650", 2.50, 1)

	svc := NewService(repo)

	_, err := svc.ProcessBill(context.Background(), 1, []BillItem{
		{ProductID: 10, Quantity: 2},
		{ProductID: 11, Quantity: 3},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "Kingfisher 650", stockErr.ProductName)
	require.Equal(t, 3, stockErr.Requested)
	require.Equal(t, 1, stockErr.Available)

	// The first line's decrement must not survive the failed bill.
	require.Equal(t, 5, repo.products[10].StockQuantity)
	require.Equal(t, 1, repo.products[11].StockQuantity)
	require.Empty(t, repo.sales)
}

func TestProcessBillRejectsRepeatedLineOverselling(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(1, 10, "Old Monk 750", 10.00, 5)

	svc := NewService(repo)

	// 3 + 3 exceeds the stock of 5 even though each line alone fits.
	_, err := svc.ProcessBill(context.Background(), 1, []BillItem{
		{ProductID: 10, Quantity: 3},
		{ProductID: 10, Quantity: 3},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 5, repo.products[10].StockQuantity)
}

func TestProcessBillRejectsEmptyOrder(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.ProcessBill(context.Background(), 1, nil)
	require.ErrorIs(t, err, ErrEmptyOrder)
}

func TestProcessBillRejectsNonPositiveQuantity(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(1, 10, "Old Monk 750", 10.00, 5)
	svc := NewService(repo)

	_, err := svc.ProcessBill(context.Background(), 1, []BillItem{{ProductID: 10, Quantity: 0}})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.ProcessBill(context.Background(), 1, []BillItem{{ProductID: 10, Quantity: -2}})
	require.ErrorIs(t, err, ErrInvalidQuantity)
	require.Equal(t, 5, repo.products[10].StockQuantity)
}

func TestProcessBillScopesProductsToStore(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(2, 10, "Old Monk 750", 10.00, 5)

	svc := NewService(repo)

	_, err := svc.ProcessBill(context.Background(), 1, []BillItem{{ProductID: 10, Quantity: 1}})
	require.ErrorIs(t, err, ErrProductNotFound)

	var notFound *ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, int64(10), notFound.ProductID)
}

func TestSaleItemPriceSnapshotSurvivesPriceEdits(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(1, 10, "Old Monk 750", 10.00, 5)

	svc := NewService(repo)

	saleID, err := svc.ProcessBill(context.Background(), 1, []BillItem{{ProductID: 10, Quantity: 1}})
	require.NoError(t, err)

	repo.products[10].Price = 99.99

	items := repo.saleItems[saleID]
	require.Len(t, items, 1)
	require.InDelta(t, 10.00, items[0].priceAtSale, 0.0001)
}

func TestProcessBillRoundsTotalToCents(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(1, 10, "Sample", 0.1, 10)

	svc := NewService(repo)

	_, err := svc.ProcessBill(context.Background(), 1, []BillItem{{ProductID: 10, Quantity: 3}})
	require.NoError(t, err)
	require.Equal(t, 0.30, repo.sales[0].TotalAmount)
}
