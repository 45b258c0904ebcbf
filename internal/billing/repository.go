package billing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/madira-pos/madira/internal/platform/db"
	"github.com/madira-pos/madira/internal/shared"
)

// Repository persists bills in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside the bill transaction.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, storeID, productID int64) (Product, error)
	DecrementStock(ctx context.Context, productID int64, quantity int) error
	InsertSale(ctx context.Context, storeID int64, total float64, at time.Time) (int64, error)
	InsertSaleItem(ctx context.Context, saleID, productID int64, quantity int, priceAtSale float64) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
// Any error from the callback rolls back every staged change.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// GetProductForUpdate re-reads the product under a row lock, verifying store
// ownership. Concurrent bills against the same product serialize here.
func (t *txRepo) GetProductForUpdate(ctx context.Context, storeID, productID int64) (Product, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT id, name, price, stock_quantity FROM products WHERE id = $1 AND store_id = $2 FOR UPDATE`,
		productID, storeID)

	var (
		product Product
		price   pgtype.Numeric
	)
	if err := row.Scan(&product.ID, &product.Name, &price, &product.StockQuantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	if price.Valid {
		f, _ := price.Float64Value()
		product.Price = f.Float64
	}
	return product, nil
}

func (t *txRepo) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE products SET stock_quantity = stock_quantity - $2 WHERE id = $1`,
		productID, quantity)
	return err
}

func (t *txRepo) InsertSale(ctx context.Context, storeID int64, total float64, at time.Time) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO sales (store_id, total_amount, sale_date) VALUES ($1, $2, $3) RETURNING id`,
		storeID, total, pgtype.Timestamptz{Time: at, Valid: true}).Scan(&id)
	return id, err
}

func (t *txRepo) InsertSaleItem(ctx context.Context, saleID, productID int64, quantity int, priceAtSale float64) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO sale_items (sale_id, product_id, quantity, price_at_sale) VALUES ($1, $2, $3, $4)`,
		saleID, productID, quantity, priceAtSale)
	return err
}
