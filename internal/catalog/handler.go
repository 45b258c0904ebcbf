package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/madira-pos/madira/internal/authz"
	"github.com/madira-pos/madira/internal/platform/httpx"
	"github.com/madira-pos/madira/internal/shared"
	"github.com/madira-pos/madira/internal/view"
)

// Handler wires HTTP endpoints for the product inventory.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a catalog handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

type dashboardPageData struct {
	Products []Product
	Errors   map[string]string
}

// ShowDashboard renders the product table with add-product and add-stock forms.
func (h *Handler) ShowDashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := authz.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	products, err := h.service.ListProducts(r.Context(), identity.StoreID)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.renderDashboard(w, r, dashboardPageData{Products: products})
}

// HandleCreateProduct accepts the add-product form submission.
func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	identity, ok := authz.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	input := CreateProductInput{
		Name:     r.PostFormValue("name"),
		Brand:    r.PostFormValue("brand"),
		Category: r.PostFormValue("category"),
		Barcode:  r.PostFormValue("barcode"),
	}
	var parseErr error
	if input.SizeML, parseErr = strconv.Atoi(r.PostFormValue("size_ml")); parseErr != nil {
		h.rejectProductForm(w, r, sess, "Size must be a whole number of millilitres.")
		return
	}
	if input.Price, parseErr = strconv.ParseFloat(r.PostFormValue("price"), 64); parseErr != nil {
		h.rejectProductForm(w, r, sess, "Price must be a number.")
		return
	}
	if input.StockQuantity, parseErr = strconv.Atoi(r.PostFormValue("stock_quantity")); parseErr != nil {
		h.rejectProductForm(w, r, sess, "Stock quantity must be a whole number.")
		return
	}

	if _, err := h.service.CreateProduct(r.Context(), identity.StoreID, input); err != nil {
		if sess != nil {
			msg := "Invalid product details."
			if errors.Is(err, ErrDuplicateBarcode) {
				msg = "A product with that barcode already exists."
			}
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: msg})
		}
		h.logger.Warn("create product", slog.Int64("store_id", identity.StoreID), slog.Any("error", err))
	} else if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Product added."})
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// rejectProductForm flashes a validation message and sends the user back to
// the dashboard without touching the inventory.
func (h *Handler) rejectProductForm(w http.ResponseWriter, r *http.Request, sess *shared.Session, msg string) {
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: msg})
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleUpdateStock accepts the add-stock form submission.
func (h *Handler) HandleUpdateStock(w http.ResponseWriter, r *http.Request) {
	identity, ok := authz.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	productID, err := strconv.ParseInt(r.PostFormValue("product_id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	quantity, err := strconv.Atoi(r.PostFormValue("add_stock"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	err = h.service.AddStock(r.Context(), identity.StoreID, productID, quantity)
	switch {
	case err == nil:
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Stock updated."})
		}
	case errors.Is(err, ErrInvalidQuantity):
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Quantity to add must be positive."})
		}
	case errors.Is(err, shared.ErrNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	default:
		h.logger.Error("add stock", slog.Int64("product_id", productID), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleAPIProducts serves the JSON product listing used by the billing screen.
// Only products with positive stock are returned.
func (h *Handler) HandleAPIProducts(w http.ResponseWriter, r *http.Request) {
	identity, ok := authz.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	products, err := h.service.ListAvailable(r.Context(), identity.StoreID)
	if err != nil {
		h.logger.Error("list available products", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if products == nil {
		products = []Product{}
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) renderDashboard(w http.ResponseWriter, r *http.Request, data dashboardPageData) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Inventory",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
