package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/madira-pos/madira/internal/shared"
)

// IdentitySource resolves a user ID into an Identity.
type IdentitySource interface {
	IdentityByID(ctx context.Context, userID int64) (Identity, error)
}

// Middleware wires authorization checks for HTTP handlers.
type Middleware struct {
	Identities IdentitySource
	Logger     *slog.Logger
}

// Require ensures the current user holds the permission. The resolved
// identity is stored in the request context for downstream handlers.
// Unauthenticated requests are redirected to the login page; authenticated
// requests without the permission receive a terminal 403.
func (m Middleware) Require(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := m.currentUserID(r)
			if !ok {
				if wantsJSON(r) {
					http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			identity, err := m.Identities.IdentityByID(r.Context(), userID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("authz resolve identity", slog.Int64("user_id", userID), slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			if !HasPermission(identity.Role, perm) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAuthenticated resolves the identity without a permission check.
// Used by landing pages that redirect per role.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.currentUserID(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		identity, err := m.Identities.IdentityByID(r.Context(), userID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("authz resolve identity", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz parse user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
