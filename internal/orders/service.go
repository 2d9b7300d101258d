package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/restaurants"
	"github.com/slooze/foodorder/internal/shared"
)

// Catalog resolves restaurants with their current menus.
type Catalog interface {
	GetRestaurant(ctx context.Context, id string) (restaurants.Restaurant, error)
}

// Service places orders and drives their lifecycle.
type Service struct {
	repo      Repository
	catalog   Catalog
	notifiers []Notifier
	observer  TransitionObserver
	logger    *slog.Logger
	validate  *validator.Validate
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithNotifiers registers event sinks.
func WithNotifiers(n ...Notifier) Option {
	return func(s *Service) { s.notifiers = append(s.notifiers, n...) }
}

// WithObserver records successful transitions.
func WithObserver(o TransitionObserver) Option {
	return func(s *Service) { s.observer = o }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a Service.
func NewService(repo Repository, catalog Catalog, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:     repo,
		catalog:  catalog,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create places a PENDING order priced from the restaurant's current menu.
func (s *Service) Create(ctx context.Context, p rbac.Principal, in CreateInput) (Order, error) {
	if err := rbac.Permit(p, rbac.OpCreateOrder); err != nil {
		return Order{}, err
	}
	if err := s.validate.Struct(in); err != nil {
		return Order{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	rest, err := s.catalog.GetRestaurant(ctx, in.RestaurantID)
	if err != nil {
		return Order{}, err
	}
	if err := rbac.RequireRegion(p, rest.Region); err != nil {
		return Order{}, err
	}

	lines := make([]Line, 0, len(in.Items))
	total := decimal.Zero
	for _, req := range in.Items {
		item, ok := rest.Item(req.MenuItemID)
		if !ok {
			return Order{}, fmt.Errorf("%w: menu item %s is not on the menu of %s", shared.ErrInvalidInput, req.MenuItemID, rest.Name)
		}
		line := Line{
			ID:         uuid.NewString(),
			MenuItemID: item.ID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   req.Quantity,
		}
		total = total.Add(line.Subtotal())
		lines = append(lines, line)
	}
	if total.GreaterThan(MaxTotal) {
		return Order{}, fmt.Errorf("%w: order total exceeds %s", shared.ErrInvalidInput, MaxTotal.StringFixed(2))
	}

	now := s.now().UTC()
	order := Order{
		ID:          uuid.NewString(),
		Status:      StatusPending,
		TotalAmount: total,
		Restaurant:  RestaurantRef{ID: rest.ID, Name: rest.Name, Region: rest.Region},
		CreatedBy:   p.ID,
		Lines:       lines,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		for i, l := range order.Lines {
			if err := tx.InsertLine(ctx, order.ID, i, l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	decorate(&order)
	s.logger.Info("order created",
		slog.String("order_id", order.ID),
		slog.String("restaurant_id", rest.ID),
		slog.String("total", order.TotalAmount.StringFixed(2)),
		slog.String("principal", p.ID),
	)
	s.notify(ctx, Event{
		Kind:         EventCreated,
		OrderID:      order.ID,
		Status:       order.Status,
		RestaurantID: rest.ID,
		Region:       rest.Region,
		TotalAmount:  order.TotalAmount,
		ActorID:      p.ID,
		OccurredAt:   now,
	})
	return order, nil
}

// List returns the orders whose restaurant is visible to p, newest first.
func (s *Service) List(ctx context.Context, p rbac.Principal) ([]Order, error) {
	scope := rbac.ScopeFor(p)
	if scope.Empty() {
		s.logger.Warn("orders: empty scope", slog.String("principal", p.ID))
		return []Order{}, nil
	}
	if err := rbac.Permit(p, rbac.OpListOrders); err != nil {
		return nil, err
	}
	var filter *rbac.Region
	if region, ok := scope.Region(); ok {
		filter = &region
	}
	list, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Order{}
	}
	for i := range list {
		decorate(&list[i])
	}
	return list, nil
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, p rbac.Principal, id string) (Order, error) {
	if err := rbac.Permit(p, rbac.OpViewOrder); err != nil {
		return Order{}, err
	}
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if err := rbac.RequireRegion(p, order.Restaurant.Region); err != nil {
		return Order{}, err
	}
	decorate(&order)
	return order, nil
}

// Pay marks a PENDING order as PAID.
func (s *Service) Pay(ctx context.Context, p rbac.Principal, id string) (Order, error) {
	return s.Transition(ctx, p, id, StatusPaid)
}

// Cancel marks a PENDING order as CANCELLED.
func (s *Service) Cancel(ctx context.Context, p rbac.Principal, id string) (Order, error) {
	return s.Transition(ctx, p, id, StatusCancelled)
}

// Transition moves an order out of PENDING. Only one of several concurrent
// transitions on the same order succeeds; the others get shared.ErrInvalidState.
func (s *Service) Transition(ctx context.Context, p rbac.Principal, id string, target Status) (Order, error) {
	var op rbac.Operation
	switch target {
	case StatusPaid:
		op = rbac.OpPayOrder
	case StatusCancelled:
		op = rbac.OpCancelOrder
	default:
		return Order{}, fmt.Errorf("%w: unsupported target status %q", shared.ErrInvalidInput, target)
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if err := rbac.Permit(p, op); err != nil {
		return Order{}, err
	}
	if err := rbac.RequireRegion(p, order.Restaurant.Region); err != nil {
		return Order{}, err
	}
	if !order.Status.CanTransitionTo(target) {
		return Order{}, fmt.Errorf("%w: order %s is %s", shared.ErrInvalidState, id, order.Status)
	}

	now := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, order.Status, target, now); err != nil {
		return Order{}, err
	}

	previous := order.Status
	order.Status = target
	order.UpdatedAt = now
	decorate(&order)

	if s.observer != nil {
		s.observer.ObserveOrderTransition(string(target))
	}
	s.logger.Info("order transitioned",
		slog.String("order_id", id),
		slog.String("from", string(previous)),
		slog.String("to", string(target)),
		slog.String("principal", p.ID),
	)
	s.notify(ctx, Event{
		Kind:           eventFor(target),
		OrderID:        id,
		Status:         target,
		PreviousStatus: previous,
		RestaurantID:   order.Restaurant.ID,
		Region:         order.Restaurant.Region,
		TotalAmount:    order.TotalAmount,
		ActorID:        p.ID,
		OccurredAt:     now,
	})
	return order, nil
}

func (s *Service) notify(ctx context.Context, e Event) {
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, e); err != nil {
			s.logger.Warn("order event not delivered",
				slog.String("order_id", e.OrderID),
				slog.String("event", string(e.Kind)),
				slog.Any("error", err),
			)
		}
	}
}

func decorate(o *Order) {
	o.Currency = CurrencyFor(o.Restaurant.Region)
	o.DisplayTotal = FormatAmount(o.Restaurant.Region, o.TotalAmount)
}
