package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/madira-pos/madira/internal/shared"
)

// Repository provides PostgreSQL backed read access to the sales ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByStore returns a page of the store's sales, newest first, with items.
func (r *Repository) ListByStore(ctx context.Context, storeID int64, limit, offset int) ([]Sale, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, store_id, total_amount, sale_date FROM sales
		 WHERE store_id = $1 ORDER BY sale_date DESC, id DESC LIMIT $2 OFFSET $3`,
		storeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		sales []Sale
		ids   []int64
	)
	for rows.Next() {
		var (
			sale   Sale
			total  pgtype.Numeric
			atTime pgtype.Timestamptz
		)
		if err := rows.Scan(&sale.ID, &sale.StoreID, &total, &atTime); err != nil {
			return nil, err
		}
		if total.Valid {
			f, _ := total.Float64Value()
			sale.TotalAmount = f.Float64
		}
		sale.SaleDate = atTime.Time
		sales = append(sales, sale)
		ids = append(ids, sale.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return sales, nil
	}

	items, err := r.itemsForSales(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Items = items[sales[i].ID]
	}
	return sales, nil
}

// StoreName returns the name of the store, or shared.ErrNotFound for an
// unknown ID.
func (r *Repository) StoreName(ctx context.Context, storeID int64) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT name FROM stores WHERE id = $1`, storeID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrNotFound
	}
	return name, err
}

// CountByStore returns the total number of sales recorded for the store.
func (r *Repository) CountByStore(ctx context.Context, storeID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE store_id = $1`, storeID).Scan(&count)
	return count, err
}

func (r *Repository) itemsForSales(ctx context.Context, saleIDs []int64) (map[int64][]SaleItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT si.id, si.sale_id, si.product_id, p.name, si.quantity, si.price_at_sale
		 FROM sale_items si JOIN products p ON p.id = si.product_id
		 WHERE si.sale_id = ANY($1) ORDER BY si.id`, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int64][]SaleItem)
	for rows.Next() {
		var (
			item   SaleItem
			saleID int64
			price  pgtype.Numeric
		)
		if err := rows.Scan(&item.ID, &saleID, &item.ProductID, &item.ProductName, &item.Quantity, &price); err != nil {
			return nil, err
		}
		if price.Valid {
			f, _ := price.Float64Value()
			item.PriceAtSale = f.Float64
		}
		items[saleID] = append(items[saleID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
