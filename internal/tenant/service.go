package tenant

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RepositoryPort defines data access methods for stores.
type RepositoryPort interface {
	ListStores(ctx context.Context) ([]Store, error)
	GetStore(ctx context.Context, id int64) (Store, error)
	UpdateLicense(ctx context.Context, id int64, validity time.Time) error
	CreateStore(ctx context.Context, name, location string, validity time.Time) (int64, error)
}

// Service handles store license business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListStores returns all stores for the license console.
func (s *Service) ListStores(ctx context.Context) ([]Store, error) {
	return s.repo.ListStores(ctx)
}

// UpdateLicense parses and applies a new license validity date.
// Malformed dates are rejected rather than silently ignored.
func (s *Service) UpdateLicense(ctx context.Context, storeID int64, dateStr string) error {
	validity, err := ParseLicenseDate(dateStr)
	if err != nil {
		return err
	}
	return s.repo.UpdateLicense(ctx, storeID, validity)
}

// CreateStore registers a new store with an initial license validity date.
func (s *Service) CreateStore(ctx context.Context, name, location, dateStr string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("tenant: store name required")
	}
	validity, err := ParseLicenseDate(dateStr)
	if err != nil {
		return 0, err
	}
	return s.repo.CreateStore(ctx, name, strings.TrimSpace(location), validity)
}

// ParseLicenseDate parses a YYYY-MM-DD license validity date.
func ParseLicenseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
