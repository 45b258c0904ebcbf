package auth

import (
	"time"

	"github.com/madira-pos/madira/internal/authz"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         authz.Role
	StoreID      int64 // zero for superadmin accounts
	CreatedAt    time.Time
}
