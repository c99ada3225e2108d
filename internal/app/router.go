package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sipertani/sipertani/internal/admin"
	"github.com/sipertani/sipertani/internal/auth"
	"github.com/sipertani/sipertani/internal/buyer"
	"github.com/sipertani/sipertani/internal/manager"
	"github.com/sipertani/sipertani/internal/observability"
	"github.com/sipertani/sipertani/internal/platform/httpx"
	"github.com/sipertani/sipertani/internal/rbac"
	"github.com/sipertani/sipertani/internal/shared"
	"github.com/sipertani/sipertani/jobs"
	"github.com/sipertani/sipertani/report"
	"github.com/sipertani/sipertani/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthHandler    *auth.Handler
	AdminHandler   *admin.Handler
	ManagerHandler *manager.Handler
	BuyerHandler   *buyer.Handler

	ReportHandler *report.Handler
	JobHandler    *jobs.Handler
	Metrics       *observability.Metrics
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
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

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Each role lands on its own dashboard.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		state := shared.StateFromContext(r.Context())
		if state == nil || !state.Authenticated() {
			http.Redirect(w, r, rbac.LoginPath, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, rbac.Home(state.Role()), http.StatusSeeOther)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.AdminHandler != nil {
		r.Route(admin.Base, params.AdminHandler.MountRoutes)
	}
	if params.ManagerHandler != nil {
		r.Route(manager.Base, params.ManagerHandler.MountRoutes)
	}
	if params.BuyerHandler != nil {
		r.Route(buyer.Base, params.BuyerHandler.MountRoutes)
	}
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
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

// staticCacheHandler caches static assets in the browser for one hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
