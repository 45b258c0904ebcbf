package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrIdentityNotFound indicates the session references a missing account.
var ErrIdentityNotFound = errors.New("authz: identity not found")

// Service resolves session user IDs into identities.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs a Service backed by the provided pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// IdentityByID loads the role and store scope for a user.
func (s *Service) IdentityByID(ctx context.Context, userID int64) (Identity, error) {
	var (
		roleStr string
		storeID pgtype.Int8
	)
	err := s.pool.QueryRow(ctx, `SELECT role, store_id FROM users WHERE id = $1`, userID).Scan(&roleStr, &storeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrIdentityNotFound
		}
		return Identity{}, err
	}
	role, err := ParseRole(roleStr)
	if err != nil {
		return Identity{}, err
	}
	id := Identity{UserID: userID, Role: role}
	if storeID.Valid {
		id.StoreID = storeID.Int64
	}
	return id, nil
}
