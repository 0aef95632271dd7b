package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/internal/observability"
	"github.com/tasktrack/tasktrack/internal/platform/httpx"
	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/stats"
	"github.com/tasktrack/tasktrack/internal/todos"
	"github.com/tasktrack/tasktrack/internal/users"
	"github.com/tasktrack/tasktrack/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AuthMiddleware auth.Middleware
	RBACMiddleware rbac.Middleware
	AuthHandler    *auth.Handler
	TodosHandler   *todos.Handler
	UsersHandler   *users.Handler
	StatsHandler   *stats.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with the application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Message(w, http.StatusNotFound, "Route not found")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	authenticate := params.AuthMiddleware.Authenticate

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r, authenticate)
		})
		r.Route("/todos", func(r chi.Router) {
			r.Use(authenticate)
			params.TodosHandler.MountRoutes(r)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate, params.RBACMiddleware.RequireAdmin())
			params.UsersHandler.MountAdminRoutes(r)
			params.TodosHandler.MountAdminRoutes(r)
			if params.StatsHandler != nil {
				params.StatsHandler.MountAdminRoutes(r)
			}
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
