package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/madira-pos/madira/internal/shared"
)

// Repository provides PostgreSQL backed persistence for products.
// Every query is scoped by store ownership.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, store_id, barcode, name, brand, category, size_ml, price, stock_quantity`

// ListByStore returns all products of a store ordered by name.
func (r *Repository) ListByStore(ctx context.Context, storeID int64) ([]Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE store_id = $1 ORDER BY name, id`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// ListAvailable returns the store's products with positive stock.
func (r *Repository) ListAvailable(ctx context.Context, storeID int64) ([]Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE store_id = $1 AND stock_quantity > 0 ORDER BY name, id`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// GetForStore fetches a product verifying store ownership.
func (r *Repository) GetForStore(ctx context.Context, storeID, productID int64) (Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND store_id = $2`, productID, storeID)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return product, nil
}

// Insert persists a new product and returns its ID.
func (r *Repository) Insert(ctx context.Context, product Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (store_id, barcode, name, brand, category, size_ml, price, stock_quantity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		product.StoreID,
		textOrNull(product.Barcode),
		product.Name, product.Brand, product.Category,
		product.SizeML, product.Price, product.StockQuantity).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateBarcode
		}
		return 0, err
	}
	return id, nil
}

// AddStock increments the product's stock quantity, verifying store ownership.
func (r *Repository) AddStock(ctx context.Context, storeID, productID int64, quantity int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $3 WHERE id = $1 AND store_id = $2`,
		productID, storeID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		product Product
		barcode pgtype.Text
		price   pgtype.Numeric
	)
	if err := row.Scan(&product.ID, &product.StoreID, &barcode, &product.Name,
		&product.Brand, &product.Category, &product.SizeML, &price, &product.StockQuantity); err != nil {
		return Product{}, err
	}
	if barcode.Valid {
		val := barcode.String
		product.Barcode = &val
	}
	if price.Valid {
		f, _ := price.Float64Value()
		product.Price = f.Float64
	}
	return product, nil
}

func textOrNull(s *string) pgtype.Text {
	if s == nil || *s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
