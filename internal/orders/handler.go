package orders

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slooze/foodorder/internal/platform/httpx"
	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/shared"
)

// Handler exposes orders over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers order routes. Authentication must run upstream.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.With(h.guard.Guard(rbac.OpListOrders)).Get("/", h.list)
		r.With(h.guard.Guard(rbac.OpCreateOrder)).Post("/", h.create)
		r.With(h.guard.Guard(rbac.OpViewOrder)).Get("/{id}", h.get)
		r.With(h.guard.Guard(rbac.OpPayOrder)).Post("/{id}/pay", h.transition(StatusPaid))
		r.With(h.guard.Guard(rbac.OpCancelOrder)).Post("/{id}/cancel", h.transition(StatusCancelled))
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFromContext(r.Context())
	list, err := h.service.List(r.Context(), p)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFromContext(r.Context())
	order, err := h.service.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	p, _ := rbac.PrincipalFromContext(r.Context())
	order, err := h.service.Create(r.Context(), p, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) transition(target Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := rbac.PrincipalFromContext(r.Context())
		order, err := h.service.Transition(r.Context(), p, chi.URLParam(r, "id"), target)
		if err != nil {
			h.fail(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, order)
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if shared.ErrorCode(err) == "INTERNAL" {
		h.logger.Error("orders request failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
