package payments

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slooze/foodorder/internal/platform/httpx"
	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/shared"
)

// Handler exposes payment methods over HTTP.
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

// MountRoutes registers payment method routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/payment-methods", func(r chi.Router) {
		r.With(h.guard.Guard(rbac.OpListPaymentMethod)).Get("/", h.list)
		r.With(h.guard.Guard(rbac.OpCreatePayment)).Post("/", h.create)
		r.With(h.guard.Guard(rbac.OpRemovePayment)).Delete("/{id}", h.remove)
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

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, err)
		return
	}
	p, _ := rbac.PrincipalFromContext(r.Context())
	m, err := h.service.Create(r.Context(), p, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFromContext(r.Context())
	m, err := h.service.Remove(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if shared.ErrorCode(err) == "INTERNAL" {
		h.logger.Error("payment methods request failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
