package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	audithttp "github.com/slooze/foodorder/internal/audit/http"
	"github.com/slooze/foodorder/internal/auth"
	"github.com/slooze/foodorder/internal/observability"
	"github.com/slooze/foodorder/internal/orders"
	"github.com/slooze/foodorder/internal/payments"
	"github.com/slooze/foodorder/internal/platform/httpx"
	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/restaurants"
	"github.com/slooze/foodorder/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Verifier          auth.Verifier
	AuthHandler       *auth.Handler
	RestaurantHandler *restaurants.Handler
	OrderHandler      *orders.Handler
	PaymentHandler    *payments.Handler
	AuditHandler      *audithttp.Handler
	JobHandler        *jobs.Handler
	RBACMiddleware    rbac.Middleware
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
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

	loginLimit := 10
	if params.Config != nil {
		loginLimit = params.Config.LoginRateLimit
	}

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(LoginRateLimit(loginLimit))
			params.AuthHandler.MountPublic(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(params.Verifier, params.Logger))
			params.AuthHandler.MountProtected(r, params.RBACMiddleware)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(params.Verifier, params.Logger))
		params.RestaurantHandler.MountRoutes(r)
		params.OrderHandler.MountRoutes(r)
		params.PaymentHandler.MountRoutes(r)
		params.AuditHandler.MountRoutes(r)
	})

	return r
}
