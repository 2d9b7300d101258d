package restaurants

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/slooze/foodorder/internal/platform/httpx"
	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/shared"
)

// Handler exposes the catalogue over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers catalogue routes. Authentication must run upstream.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Guard(rbac.OpListRestaurants)).Get("/restaurants", h.list)
	r.With(h.guard.Guard(rbac.OpViewRestaurant)).Get("/restaurants/{id}", h.get)
	r.With(h.guard.Guard(rbac.OpUpdateMenuPrice)).Patch("/menu-items/{id}", h.updatePrice)
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
	rest, err := h.service.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rest)
}

type priceRequest struct {
	Price string `json:"price" validate:"required,numeric"`
}

func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.fail(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		h.fail(w, fmt.Errorf("%w: price: %v", shared.ErrInvalidInput, err))
		return
	}
	p, _ := rbac.PrincipalFromContext(r.Context())
	item, err := h.service.UpdateMenuItemPrice(r.Context(), p, chi.URLParam(r, "id"), price)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if shared.ErrorCode(err) == "INTERNAL" {
		h.logger.Error("restaurants request failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
