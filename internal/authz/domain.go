// Package authz implements role based authorization with a fixed
// role-to-permission table. Roles are a closed set; there is no dynamic
// policy storage.
package authz

import (
	"errors"
	"fmt"
)

// Role is one of the three fixed account roles.
type Role string

const (
	// RoleSuperadmin manages store licenses globally and has no store scope.
	RoleSuperadmin Role = "superadmin"
	// RoleAdmin views the sales history of its own store.
	RoleAdmin Role = "admin"
	// RoleStore manages inventory and processes bills for its own store.
	RoleStore Role = "store"
)

// ErrUnknownRole indicates a role string outside the closed set.
var ErrUnknownRole = errors.New("authz: unknown role")

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperadmin, RoleAdmin, RoleStore:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// RequiresStore reports whether accounts with this role must be bound to a store.
func (r Role) RequiresStore() bool {
	return r == RoleAdmin || r == RoleStore
}

// Permission names an atomic capability checked by route middleware.
type Permission string

const (
	PermLicensesManage Permission = "licenses.manage"
	PermProductsView   Permission = "products.view"
	PermProductsEdit   Permission = "products.edit"
	PermBillingProcess Permission = "billing.process"
	PermSalesView      Permission = "sales.view"
)

// permissionTable maps each role to the permissions it is granted.
var permissionTable = map[Role][]Permission{
	RoleSuperadmin: {PermLicensesManage},
	RoleAdmin:      {PermProductsView, PermSalesView},
	RoleStore:      {PermProductsView, PermProductsEdit, PermBillingProcess},
}

// HasPermission answers the allow/deny decision for a role and permission.
func HasPermission(role Role, perm Permission) bool {
	for _, granted := range permissionTable[role] {
		if granted == perm {
			return true
		}
	}
	return false
}

// Identity describes the authenticated actor and its tenant scope.
// StoreID is zero for superadmin accounts.
type Identity struct {
	UserID  int64
	Role    Role
	StoreID int64
}

// LandingPath returns the page a freshly authenticated identity is sent to.
func (id Identity) LandingPath() string {
	switch id.Role {
	case RoleSuperadmin:
		return "/superadmin"
	case RoleAdmin:
		return "/sales"
	default:
		return "/billing"
	}
}
