package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/okean-yachts/okean-cpq/internal/auth"
	"github.com/okean-yachts/okean-cpq/internal/catalog/hulls"
	"github.com/okean-yachts/okean-cpq/internal/catalog/memorial"
	"github.com/okean-yachts/okean-cpq/internal/catalog/models"
	"github.com/okean-yachts/okean-cpq/internal/catalog/options"
	"github.com/okean-yachts/okean-cpq/internal/observability"
	"github.com/okean-yachts/okean-cpq/internal/pricing/limits"
	"github.com/okean-yachts/okean-cpq/internal/rbac"
	"github.com/okean-yachts/okean-cpq/internal/roles"
	"github.com/okean-yachts/okean-cpq/internal/sales/approvals"
	"github.com/okean-yachts/okean-cpq/internal/sales/atos"
	"github.com/okean-yachts/okean-cpq/internal/sales/contracts"
	"github.com/okean-yachts/okean-cpq/internal/sales/customizations"
	"github.com/okean-yachts/okean-cpq/internal/sales/quotations"
	"github.com/okean-yachts/okean-cpq/internal/shared"
	"github.com/okean-yachts/okean-cpq/internal/users"
	"github.com/okean-yachts/okean-cpq/jobs"
	"github.com/okean-yachts/okean-cpq/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler          *auth.Handler
	UsersHandler         *users.Handler
	RolesHandler         *roles.Handler
	PermissionsHandler   *rbac.PermissionsHandler
	ModelsHandler        *models.Handler
	OptionsHandler       *options.Handler
	MemorialHandler      *memorial.Handler
	HullsHandler         *hulls.Handler
	LimitsHandler        *limits.Handler
	QuotationsHandler    *quotations.Handler
	ApprovalsHandler     *approvals.Handler
	ContractsHandler     *contracts.Handler
	ATOsHandler          *atos.Handler
	CustomizationHandler *customizations.Handler
	ReportHandler        *report.Handler
	JobHandler           *jobs.Handler

	RBACMiddleware rbac.Middleware
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

	// Hands out the token mutating requests must echo in X-CSRF-Token.
	r.Get("/csrf", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		token, err := params.CSRFManager.EnsureToken(r.Context(), sess)
		if err != nil {
			params.Logger.Error("issue csrf token", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"csrf_token":"` + token + `"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	if params.PermissionsHandler != nil {
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
	}

	r.Route("/catalog", func(r chi.Router) {
		r.Route("/models", params.ModelsHandler.MountRoutes)
		r.Route("/options", params.OptionsHandler.MountRoutes)
		r.Route("/memorial", params.MemorialHandler.MountRoutes)
		r.Route("/hulls", params.HullsHandler.MountRoutes)
	})

	r.Route("/pricing", func(r chi.Router) {
		params.LimitsHandler.MountRoutes(r, params.RBACMiddleware)
	})

	r.Route("/sales", func(r chi.Router) {
		params.QuotationsHandler.MountRoutes(r)
		params.ApprovalsHandler.MountRoutes(r)
		params.ContractsHandler.MountRoutes(r)
		params.ATOsHandler.MountRoutes(r)
		params.CustomizationHandler.MountRoutes(r)
	})

	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
