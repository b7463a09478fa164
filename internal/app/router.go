package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sitetrack/sitetrack/internal/auth"
	"github.com/sitetrack/sitetrack/internal/catalog"
	"github.com/sitetrack/sitetrack/internal/ledger"
	"github.com/sitetrack/sitetrack/internal/observability"
	"github.com/sitetrack/sitetrack/internal/payments"
	"github.com/sitetrack/sitetrack/internal/projects"
	"github.com/sitetrack/sitetrack/internal/shared"
	"github.com/sitetrack/sitetrack/internal/warehouse"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler      *auth.Handler
	ProjectsHandler  *projects.Handler
	LedgerHandler    *ledger.Handler
	CatalogHandler   *catalog.Handler
	WarehouseHandler *warehouse.Handler
	PaymentsHandler  *payments.Handler
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

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/projects", func(r chi.Router) {
		params.ProjectsHandler.MountRoutes(r)
		r.Route("/{projectID}/inventory", params.LedgerHandler.MountRoutes)
		r.Route("/{projectID}/payments", params.PaymentsHandler.MountRoutes)
	})
	r.Route("/catalog", params.CatalogHandler.MountRoutes)
	r.Route("/warehouse", params.WarehouseHandler.MountRoutes)

	if params.Config != nil && params.Config.UploadDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(params.Config.UploadDir)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	return r
}
