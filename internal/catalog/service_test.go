package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/madira-pos/madira/internal/shared"
)

type memoryRepo struct {
	products map[int64]Product
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]Product)}
}

func (r *memoryRepo) ListByStore(ctx context.Context, storeID int64) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListAvailable(ctx context.Context, storeID int64) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		if p.StoreID == storeID && p.StockQuantity > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetForStore(ctx context.Context, storeID, productID int64) (Product, error) {
	p, ok := r.products[productID]
	if !ok || p.StoreID != storeID {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) Insert(ctx context.Context, product Product) (int64, error) {
	for _, existing := range r.products {
		if existing.StoreID == product.StoreID &&
			existing.Barcode != nil && product.Barcode != nil &&
			*existing.Barcode == *product.Barcode {
			return 0, ErrDuplicateBarcode
		}
	}
	r.nextID++
	product.ID = r.nextID
	r.products[product.ID] = product
	return product.ID, nil
}

func (r *memoryRepo) AddStock(ctx context.Context, storeID, productID int64, quantity int) error {
	p, ok := r.products[productID]
	if !ok || p.StoreID != storeID {
		return shared.ErrNotFound
	}
	p.StockQuantity += quantity
	r.products[productID] = p
	return nil
}

func TestCreateProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	id, err := svc.CreateProduct(ctx, 1, CreateProductInput{
		Name:          "  Old Monk 750  ",
		Brand:         "Old Monk",
		Category:      "Rum",
		Barcode:       "890123",
		SizeML:        750,
		Price:         10.50,
		StockQuantity: 12,
	})
	require.NoError(t, err)

	stored := repo.products[id]
	require.Equal(t, "Old Monk 750", stored.Name)
	require.NotNil(t, stored.Barcode)
	require.Equal(t, "890123", *stored.Barcode)
	require.Equal(t, 12, stored.StockQuantity)
}

func TestCreateProductWithoutBarcodeStoresNull(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	id, err := svc.CreateProduct(context.Background(), 1, CreateProductInput{
		Name:   "Loose Pour",
		SizeML: 60,
		Price:  1.00,
	})
	require.NoError(t, err)
	require.Nil(t, repo.products[id].Barcode)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, 1, CreateProductInput{Name: "", SizeML: 750, Price: 1})
	require.Error(t, err)

	_, err = svc.CreateProduct(ctx, 1, CreateProductInput{Name: "No Size", SizeML: 0, Price: 1})
	require.Error(t, err)

	_, err = svc.CreateProduct(ctx, 1, CreateProductInput{Name: "Negative", SizeML: 750, Price: -1})
	require.Error(t, err)
}

func TestCreateProductDuplicateBarcode(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, 1, CreateProductInput{Name: "First", Barcode: "111", SizeML: 750, Price: 5})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, 1, CreateProductInput{Name: "Second", Barcode: "111", SizeML: 750, Price: 5})
	require.ErrorIs(t, err, ErrDuplicateBarcode)
}

func TestAddStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	id, err := svc.CreateProduct(ctx, 1, CreateProductInput{Name: "Beer", SizeML: 650, Price: 2, StockQuantity: 3})
	require.NoError(t, err)

	require.NoError(t, svc.AddStock(ctx, 1, id, 4))
	require.Equal(t, 7, repo.products[id].StockQuantity)

	require.ErrorIs(t, svc.AddStock(ctx, 1, id, 0), ErrInvalidQuantity)
	require.ErrorIs(t, svc.AddStock(ctx, 1, id, -5), ErrInvalidQuantity)
	require.Equal(t, 7, repo.products[id].StockQuantity)

	// Other stores cannot touch this product's stock.
	require.ErrorIs(t, svc.AddStock(ctx, 2, id, 1), shared.ErrNotFound)
}

func TestListAvailableExcludesOutOfStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, 1, CreateProductInput{Name: "In Stock", SizeML: 750, Price: 5, StockQuantity: 2})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, 1, CreateProductInput{Name: "Sold Out", SizeML: 750, Price: 5, StockQuantity: 0})
	require.NoError(t, err)

	available, err := svc.ListAvailable(ctx, 1)
	require.NoError(t, err)
	require.Len(t, available, 1)
	require.Equal(t, "In Stock", available[0].Name)
}
