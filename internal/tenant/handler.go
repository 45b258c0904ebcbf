package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/madira-pos/madira/internal/shared"
	"github.com/madira-pos/madira/internal/view"
)

// Handler wires the superadmin license console.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a tenant handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers superadmin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showConsole)
	r.Post("/update_license/{storeID}", h.handleUpdateLicense)
}

type consolePageData struct {
	Stores []Store
	Today  time.Time
}

func (h *Handler) showConsole(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)

	stores, err := h.service.ListStores(r.Context())
	if err != nil {
		h.logger.Error("list stores", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "License Console",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        consolePageData{Stores: stores, Today: time.Now()},
	}
	if err := h.templates.Render(w, "pages/superadmin.html", viewData); err != nil {
		h.logger.Error("render license console", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleUpdateLicense(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(chi.URLParam(r, "storeID"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	err = h.service.UpdateLicense(r.Context(), storeID, r.PostFormValue("new_validity"))
	switch {
	case err == nil:
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "License updated."})
		}
	case errors.Is(err, ErrInvalidDate):
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Invalid date, use YYYY-MM-DD."})
		}
	case errors.Is(err, shared.ErrNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	default:
		h.logger.Error("update license", slog.Int64("store_id", storeID), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/superadmin", http.StatusSeeOther)
}
