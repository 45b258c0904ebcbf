package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/madira-pos/madira/internal/shared"
)

// Repository provides PostgreSQL backed persistence for stores.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListStores returns all stores ordered by license validity, soonest expiry first.
func (r *Repository) ListStores(ctx context.Context) ([]Store, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, location, license_validity, created_at FROM stores ORDER BY license_validity, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []Store
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stores, nil
}

// GetStore fetches a single store by ID.
func (r *Repository) GetStore(ctx context.Context, id int64) (Store, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, location, license_validity, created_at FROM stores WHERE id = $1`, id)
	store, err := scanStore(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Store{}, shared.ErrNotFound
		}
		return Store{}, err
	}
	return store, nil
}

// UpdateLicense sets a new license validity date for the store.
func (r *Repository) UpdateLicense(ctx context.Context, id int64, validity time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE stores SET license_validity = $2 WHERE id = $1`,
		id, pgtype.Date{Time: validity, Valid: true})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CreateStore inserts a new store and returns its ID.
func (r *Repository) CreateStore(ctx context.Context, name, location string, validity time.Time) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO stores (name, location, license_validity) VALUES ($1, $2, $3) RETURNING id`,
		name, location, pgtype.Date{Time: validity, Valid: true}).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateName
		}
		return 0, err
	}
	return id, nil
}

func scanStore(row pgx.Row) (Store, error) {
	var (
		store     Store
		validity  pgtype.Date
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&store.ID, &store.Name, &store.Location, &validity, &createdAt); err != nil {
		return Store{}, err
	}
	store.LicenseValidity = validity.Time
	store.CreatedAt = createdAt.Time
	return store, nil
}
