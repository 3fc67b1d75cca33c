package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurumpos/aurumpos/internal/auth"
	"github.com/aurumpos/aurumpos/internal/catalog"
	"github.com/aurumpos/aurumpos/internal/ledger"
	"github.com/aurumpos/aurumpos/internal/observability"
	"github.com/aurumpos/aurumpos/internal/pricing"
	"github.com/aurumpos/aurumpos/internal/products"
	"github.com/aurumpos/aurumpos/internal/reports"
	"github.com/aurumpos/aurumpos/internal/shops"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthMiddleware  auth.Middleware
	AuthHandler     *auth.Handler
	ShopsHandler    *shops.Handler
	CatalogHandler  *catalog.Handler
	ProductsHandler *products.Handler
	PricingHandler  *pricing.Handler
	LedgerHandler   *ledger.Handler
	ReportsHandler  *reports.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with AurumPOS defaults. Everything
// under /api except login requires a bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		params.AuthHandler.MountRoutes(api)

		api.Group(func(authed chi.Router) {
			authed.Use(params.AuthMiddleware.Authenticate)
			params.ShopsHandler.MountRoutes(authed)
			params.CatalogHandler.MountRoutes(authed)
			params.ProductsHandler.MountRoutes(authed)
			params.PricingHandler.MountRoutes(authed)
			params.LedgerHandler.MountRoutes(authed)
			params.ReportsHandler.MountRoutes(authed)
		})
	})

	return r
}
