package authz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/madira-pos/madira/internal/shared"
)

type stubIdentities struct {
	identities map[int64]Identity
}

func (s *stubIdentities) IdentityByID(ctx context.Context, userID int64) (Identity, error) {
	id, ok := s.identities[userID]
	if !ok {
		return Identity{}, errors.New("unknown user")
	}
	return id, nil
}

func requestWithUser(t *testing.T, target string, userID string) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	sess, err := sessionManager.Load(context.Background(), req)
	require.NoError(t, err)
	if userID != "" {
		sess.SetUser(userID)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func okHandler(hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireRedirectsAnonymousToLogin(t *testing.T) {
	mw := Middleware{Identities: &stubIdentities{}}
	var hit bool

	rr := httptest.NewRecorder()
	mw.Require(PermProductsView)(okHandler(&hit)).ServeHTTP(rr, requestWithUser(t, "/dashboard", ""))

	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/login", rr.Header().Get("Location"))
	require.False(t, hit)
}

func TestRequireReturns401ForAnonymousAPIRequests(t *testing.T) {
	mw := Middleware{Identities: &stubIdentities{}}
	var hit bool

	rr := httptest.NewRecorder()
	mw.Require(PermProductsView)(okHandler(&hit)).ServeHTTP(rr, requestWithUser(t, "/api/products", ""))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.False(t, hit)
}

func TestRequireDeniesMissingPermission(t *testing.T) {
	mw := Middleware{Identities: &stubIdentities{identities: map[int64]Identity{
		7: {UserID: 7, Role: RoleAdmin, StoreID: 2},
	}}}
	var hit bool

	rr := httptest.NewRecorder()
	mw.Require(PermBillingProcess)(okHandler(&hit)).ServeHTTP(rr, requestWithUser(t, "/billing", "7"))

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.False(t, hit)
}

func TestRequirePassesIdentityToHandler(t *testing.T) {
	mw := Middleware{Identities: &stubIdentities{identities: map[int64]Identity{
		7: {UserID: 7, Role: RoleStore, StoreID: 2},
	}}}

	var got Identity
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		got = id
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	mw.Require(PermBillingProcess)(handler).ServeHTTP(rr, requestWithUser(t, "/billing", "7"))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, int64(7), got.UserID)
	require.Equal(t, int64(2), got.StoreID)
}

func TestRequireAuthenticatedRedirectsOnUnknownUser(t *testing.T) {
	mw := Middleware{Identities: &stubIdentities{}}
	var hit bool

	rr := httptest.NewRecorder()
	mw.RequireAuthenticated(okHandler(&hit)).ServeHTTP(rr, requestWithUser(t, "/", "99"))

	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/login", rr.Header().Get("Location"))
	require.False(t, hit)
}
