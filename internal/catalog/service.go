package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RepositoryPort defines data access methods for products.
type RepositoryPort interface {
	ListByStore(ctx context.Context, storeID int64) ([]Product, error)
	ListAvailable(ctx context.Context, storeID int64) ([]Product, error)
	GetForStore(ctx context.Context, storeID, productID int64) (Product, error)
	Insert(ctx context.Context, product Product) (int64, error)
	AddStock(ctx context.Context, storeID, productID int64, quantity int) error
}

// Service handles product inventory business logic.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// ListProducts returns all products of the store for the dashboard.
func (s *Service) ListProducts(ctx context.Context, storeID int64) ([]Product, error) {
	return s.repo.ListByStore(ctx, storeID)
}

// ListAvailable returns products with positive stock for the billing screen.
func (s *Service) ListAvailable(ctx context.Context, storeID int64) ([]Product, error) {
	return s.repo.ListAvailable(ctx, storeID)
}

// CreateProduct validates and persists a new product for the store.
func (s *Service) CreateProduct(ctx context.Context, storeID int64, input CreateProductInput) (int64, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Barcode = strings.TrimSpace(input.Barcode)
	if err := s.validate.Struct(input); err != nil {
		return 0, fmt.Errorf("catalog: invalid product: %w", err)
	}
	product := Product{
		StoreID:       storeID,
		Name:          input.Name,
		Brand:         input.Brand,
		Category:      input.Category,
		SizeML:        input.SizeML,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
	}
	if input.Barcode != "" {
		product.Barcode = &input.Barcode
	}
	return s.repo.Insert(ctx, product)
}

// AddStock increments stock by a positive quantity.
// Non-positive quantities are rejected rather than silently ignored.
func (s *Service) AddStock(ctx context.Context, storeID, productID int64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return s.repo.AddStock(ctx, storeID, productID, quantity)
}
