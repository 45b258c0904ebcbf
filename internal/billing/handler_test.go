package billing

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/madira-pos/madira/internal/authz"
	"github.com/madira-pos/madira/internal/observability"
	_ "github.com/madira-pos/madira/testing"
)

func newBillingHandler(repo *memoryRepo) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, NewService(repo), nil, nil, observability.NewMetrics())
}

func postBill(t *testing.T, handler *Handler, identity *authz.Identity, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/process_bill", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if identity != nil {
		req = req.WithContext(authz.ContextWithIdentity(req.Context(), *identity))
	}
	rr := httptest.NewRecorder()
	handler.HandleProcessBill(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	return envelope
}

func TestHandleProcessBill(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(3, 10, "Old Monk 750", 10.00, 5)
	handler := newBillingHandler(repo)
	identity := &authz.Identity{UserID: 1, Role: authz.RoleStore, StoreID: 3}

	rr := postBill(t, handler, identity, `{"items":[{"id":10,"quantity":2}]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	envelope := decodeEnvelope(t, rr)
	require.Equal(t, true, envelope["success"])
	require.EqualValues(t, 1, envelope["sale_id"])
	require.Equal(t, 3, repo.products[10].StockQuantity)
}

func TestHandleProcessBillInsufficientStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(3, 10, "Old Monk 750", 10.00, 1)
	handler := newBillingHandler(repo)
	identity := &authz.Identity{UserID: 1, Role: authz.RoleStore, StoreID: 3}

	rr := postBill(t, handler, identity, `{"items":[{"id":10,"quantity":4}]}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	envelope := decodeEnvelope(t, rr)
	require.Equal(t, false, envelope["success"])
	require.Contains(t, envelope["error"], "not enough stock for Old Monk 750")
	require.Equal(t, 1, repo.products[10].StockQuantity)
}

func TestHandleProcessBillEmptyOrder(t *testing.T) {
	handler := newBillingHandler(newMemoryRepo())
	identity := &authz.Identity{UserID: 1, Role: authz.RoleStore, StoreID: 3}

	rr := postBill(t, handler, identity, `{"items":[]}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	envelope := decodeEnvelope(t, rr)
	require.Equal(t, false, envelope["success"])
}

func TestHandleProcessBillMalformedBody(t *testing.T) {
	handler := newBillingHandler(newMemoryRepo())
	identity := &authz.Identity{UserID: 1, Role: authz.RoleStore, StoreID: 3}

	rr := postBill(t, handler, identity, `{"items":`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	envelope := decodeEnvelope(t, rr)
	require.Equal(t, false, envelope["success"])
	require.Equal(t, "malformed request body", envelope["error"])
}

func TestHandleProcessBillWithoutIdentity(t *testing.T) {
	handler := newBillingHandler(newMemoryRepo())

	rr := postBill(t, handler, nil, `{"items":[{"id":10,"quantity":1}]}`)

	require.Equal(t, http.StatusForbidden, rr.Code)
}
