package ledger

import (
	"context"

	"github.com/madira-pos/madira/internal/shared"
)

// RepositoryPort defines data access methods for the sales ledger.
type RepositoryPort interface {
	ListByStore(ctx context.Context, storeID int64, limit, offset int) ([]Sale, error)
	CountByStore(ctx context.Context, storeID int64) (int, error)
	StoreName(ctx context.Context, storeID int64) (string, error)
}

// Service handles sales history queries.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

const defaultPerPage = 25

// History returns one page of the store's sales, newest first.
func (s *Service) History(ctx context.Context, storeID int64, page int) ([]Sale, shared.Pagination, error) {
	total, err := s.repo.CountByStore(ctx, storeID)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	pagination := shared.NewPagination(page, defaultPerPage, total)
	sales, err := s.repo.ListByStore(ctx, storeID, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return sales, pagination, nil
}

// StoreName resolves the display name of the store the history belongs to.
func (s *Service) StoreName(ctx context.Context, storeID int64) (string, error) {
	return s.repo.StoreName(ctx, storeID)
}
