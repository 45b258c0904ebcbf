package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/madira-pos/madira/internal/shared"
)

type memoryRepo struct {
	stores map[int64]Store
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{stores: make(map[int64]Store)}
}

func (r *memoryRepo) ListStores(ctx context.Context) ([]Store, error) {
	var out []Store
	for _, s := range r.stores {
		out = append(out, s)
	}
	return out, nil
}

func (r *memoryRepo) GetStore(ctx context.Context, id int64) (Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return Store{}, shared.ErrNotFound
	}
	return s, nil
}

func (r *memoryRepo) UpdateLicense(ctx context.Context, id int64, validity time.Time) error {
	s, ok := r.stores[id]
	if !ok {
		return shared.ErrNotFound
	}
	s.LicenseValidity = validity
	r.stores[id] = s
	return nil
}

func (r *memoryRepo) CreateStore(ctx context.Context, name, location string, validity time.Time) (int64, error) {
	for _, existing := range r.stores {
		if existing.Name == name {
			return 0, ErrDuplicateName
		}
	}
	r.nextID++
	r.stores[r.nextID] = Store{ID: r.nextID, Name: name, Location: location, LicenseValidity: validity}
	return r.nextID, nil
}

func TestUpdateLicense(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	id, err := svc.CreateStore(ctx, "Main Branch", "Market Road", "2025-01-31")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateLicense(ctx, id, "2026-01-31"))
	require.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), repo.stores[id].LicenseValidity)
}

func TestUpdateLicenseRejectsMalformedDate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	id, err := svc.CreateStore(ctx, "Main Branch", "", "2025-01-31")
	require.NoError(t, err)

	require.ErrorIs(t, svc.UpdateLicense(ctx, id, "31-01-2026"), ErrInvalidDate)
	require.ErrorIs(t, svc.UpdateLicense(ctx, id, "not-a-date"), ErrInvalidDate)
	require.ErrorIs(t, svc.UpdateLicense(ctx, id, ""), ErrInvalidDate)

	// The stored validity is untouched after rejected updates.
	require.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), repo.stores[id].LicenseValidity)
}

func TestUpdateLicenseUnknownStore(t *testing.T) {
	svc := NewService(newMemoryRepo())

	require.ErrorIs(t, svc.UpdateLicense(context.Background(), 99, "2026-01-31"), shared.ErrNotFound)
}

func TestCreateStoreValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreateStore(ctx, "   ", "", "2026-01-31")
	require.Error(t, err)

	_, err = svc.CreateStore(ctx, "Branch", "", "tomorrow")
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.CreateStore(ctx, "Branch", "", "2026-01-31")
	require.NoError(t, err)

	_, err = svc.CreateStore(ctx, "Branch", "", "2026-01-31")
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestStoreLicensed(t *testing.T) {
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	licensed := Store{LicenseValidity: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)}
	require.True(t, licensed.Licensed(today))

	future := Store{LicenseValidity: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)}
	require.True(t, future.Licensed(today))

	expired := Store{LicenseValidity: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)}
	require.False(t, expired.Licensed(today))
}
