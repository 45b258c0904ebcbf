// Package tenant manages store records. Every product, sale and
// non-superadmin user in the system is scoped to exactly one store.
package tenant

import (
	"errors"
	"time"
)

// Store is an isolated retail outlet holding a license.
type Store struct {
	ID              int64
	Name            string
	Location        string
	LicenseValidity time.Time
	CreatedAt       time.Time
}

// Licensed reports whether the store license covers the given day.
func (s Store) Licensed(today time.Time) bool {
	return !s.LicenseValidity.Before(today.Truncate(24 * time.Hour))
}

// ErrInvalidDate indicates a license date that does not parse as YYYY-MM-DD.
var ErrInvalidDate = errors.New("tenant: invalid license date")

// ErrDuplicateName indicates a store name collision.
var ErrDuplicateName = errors.New("tenant: store name already exists")
