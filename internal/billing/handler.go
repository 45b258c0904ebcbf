package billing

import (
	"log/slog"
	"net/http"

	"github.com/madira-pos/madira/internal/authz"
	"github.com/madira-pos/madira/internal/observability"
	"github.com/madira-pos/madira/internal/platform/httpx"
	"github.com/madira-pos/madira/internal/shared"
	"github.com/madira-pos/madira/internal/view"
)

// Handler wires the billing screen and the bill-processing JSON endpoint.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	metrics   *observability.Metrics
}

// NewHandler constructs a billing handler. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, metrics: metrics}
}

type processBillRequest struct {
	Items []BillItem `json:"items"`
}

type processBillResponse struct {
	Success bool   `json:"success"`
	SaleID  int64  `json:"sale_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ShowBillingScreen renders the point-of-sale page.
func (h *Handler) ShowBillingScreen(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Billing",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
	}
	if err := h.templates.Render(w, "pages/billing.html", viewData); err != nil {
		h.logger.Error("render billing screen", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// HandleProcessBill accepts {items:[{id,quantity},...]} and responds with the
// original success/error envelope: 400 for precondition failures, 500 for
// unexpected persistence failures.
func (h *Handler) HandleProcessBill(w http.ResponseWriter, r *http.Request) {
	identity, ok := authz.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	var req processBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, processBillResponse{Success: false, Error: "malformed request body"})
		return
	}

	saleID, err := h.service.ProcessBill(r.Context(), identity.StoreID, req.Items)
	if err != nil {
		if IsPrecondition(err) {
			h.metrics.RecordBill("rejected")
			httpx.JSON(w, http.StatusBadRequest, processBillResponse{Success: false, Error: userMessage(err)})
			return
		}
		h.metrics.RecordBill("error")
		h.logger.Error("process bill", slog.Int64("store_id", identity.StoreID), slog.Any("error", err))
		httpx.JSON(w, http.StatusInternalServerError, processBillResponse{Success: false, Error: "could not process bill"})
		return
	}

	h.metrics.RecordBill("success")
	httpx.JSON(w, http.StatusOK, processBillResponse{Success: true, SaleID: saleID})
}

// userMessage strips the package prefix from precondition errors so the
// billing screen can show them verbatim.
func userMessage(err error) string {
	const prefix = "billing: "
	msg := err.Error()
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
