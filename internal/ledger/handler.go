package ledger

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/madira-pos/madira/internal/authz"
	"github.com/madira-pos/madira/internal/shared"
	"github.com/madira-pos/madira/internal/view"
)

// Handler wires the sales history page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a ledger handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

type salesPageData struct {
	StoreName  string
	Sales      []Sale
	Pagination shared.Pagination
}

// ShowSalesHistory renders the store's sales, newest first.
func (h *Handler) ShowSalesHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := authz.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	sales, pagination, err := h.service.History(r.Context(), identity.StoreID, page)
	if err != nil {
		h.logger.Error("sales history", slog.Int64("store_id", identity.StoreID), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	storeName, err := h.service.StoreName(r.Context(), identity.StoreID)
	if err != nil {
		h.logger.Warn("store name", slog.Int64("store_id", identity.StoreID), slog.Any("error", err))
	}

	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Sales History",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        salesPageData{StoreName: storeName, Sales: sales, Pagination: pagination},
	}
	if err := h.templates.Render(w, "pages/sales.html", viewData); err != nil {
		h.logger.Error("render sales history", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
