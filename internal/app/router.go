package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/madira-pos/madira/internal/auth"
	"github.com/madira-pos/madira/internal/authz"
	"github.com/madira-pos/madira/internal/billing"
	"github.com/madira-pos/madira/internal/catalog"
	"github.com/madira-pos/madira/internal/ledger"
	"github.com/madira-pos/madira/internal/observability"
	"github.com/madira-pos/madira/internal/shared"
	"github.com/madira-pos/madira/internal/tenant"
	"github.com/madira-pos/madira/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthHandler    *auth.Handler
	TenantHandler  *tenant.Handler
	CatalogHandler *catalog.Handler
	BillingHandler *billing.Handler
	LedgerHandler  *ledger.Handler
	Authz          authz.Middleware
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Landing: authenticated users land on their role's home page.
	r.Group(func(r chi.Router) {
		r.Use(params.Authz.RequireAuthenticated)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			identity, _ := authz.IdentityFromContext(r.Context())
			http.Redirect(w, r, identity.LandingPath(), http.StatusSeeOther)
		})
	})

	params.AuthHandler.MountRoutes(r)

	r.Route("/superadmin", func(r chi.Router) {
		r.Use(params.Authz.Require(authz.PermLicensesManage))
		params.TenantHandler.MountRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Authz.Require(authz.PermProductsView))
		r.Get("/dashboard", params.CatalogHandler.ShowDashboard)
		r.Get("/api/products", params.CatalogHandler.HandleAPIProducts)
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Authz.Require(authz.PermProductsEdit))
		r.Post("/dashboard", params.CatalogHandler.HandleCreateProduct)
		r.Post("/update_stock", params.CatalogHandler.HandleUpdateStock)
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Authz.Require(authz.PermBillingProcess))
		r.Get("/billing", params.BillingHandler.ShowBillingScreen)
		r.Post("/api/process_bill", params.BillingHandler.HandleProcessBill)
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Authz.Require(authz.PermSalesView))
		r.Get("/sales", params.LedgerHandler.ShowSalesHistory)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
