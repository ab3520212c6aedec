package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/backoffice/admin-system/internal/audit"
	audithttp "github.com/backoffice/admin-system/internal/audit/http"
	"github.com/backoffice/admin-system/internal/auth"
	"github.com/backoffice/admin-system/internal/menus"
	"github.com/backoffice/admin-system/internal/observability"
	"github.com/backoffice/admin-system/internal/permissions"
	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/roles"
	"github.com/backoffice/admin-system/internal/users"
	"github.com/backoffice/admin-system/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	AuthHandler        *auth.Handler
	AuthMiddleware     *auth.Middleware
	Recorder           *audit.Recorder
	UsersHandler       *users.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *permissions.Handler
	MenusHandler       *menus.Handler
	AuditHandler       *audithttp.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with admin API defaults.
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
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	prefix := "/api/system"
	loginRate := 0
	if params.Config != nil {
		prefix = params.Config.APIPrefix
		loginRate = params.Config.LoginRatePerMinute
	}

	r.Route(prefix, func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "no such endpoint")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
		})

		r.Route("/auth", func(r chi.Router) {
			if params.AuthHandler == nil {
				return
			}
			r.Group(func(r chi.Router) {
				r.Use(LoginLimiter(loginRate))
				params.AuthHandler.MountPublicRoutes(r)
			})
			r.Group(func(r chi.Router) {
				authenticated(r, params)
				params.AuthHandler.MountRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			authenticated(r, params)
			if params.UsersHandler != nil {
				r.Route("/admins", params.UsersHandler.MountRoutes)
			}
			if params.RolesHandler != nil {
				r.Route("/roles", params.RolesHandler.MountRoutes)
			}
			if params.PermissionsHandler != nil {
				r.Route("/permissions", params.PermissionsHandler.MountRoutes)
			}
			if params.MenusHandler != nil {
				r.Route("/menus", params.MenusHandler.MountRoutes)
			}
			if params.AuditHandler != nil {
				r.Route("/operation-logs", params.AuditHandler.MountRoutes)
			}
		})
	})

	return r
}

// authenticated installs the bearer check and, when enabled, operation logging.
func authenticated(r chi.Router, params RouterParams) {
	if params.AuthMiddleware != nil {
		r.Use(params.AuthMiddleware.RequireAdmin)
	}
	if params.Recorder != nil {
		r.Use(params.Recorder.Middleware)
	}
}
