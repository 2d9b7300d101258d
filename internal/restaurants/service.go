package restaurants

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/shared"
)

// Service applies the region rule to catalogue reads and edits.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// List returns the restaurants visible to p, ordered by name.
func (s *Service) List(ctx context.Context, p rbac.Principal) ([]Restaurant, error) {
	scope := rbac.ScopeFor(p)
	if scope.Empty() {
		s.logger.Warn("restaurants: empty scope", slog.String("principal", p.ID))
		return []Restaurant{}, nil
	}
	if err := rbac.Permit(p, rbac.OpListRestaurants); err != nil {
		return nil, err
	}
	var filter *rbac.Region
	if region, ok := scope.Region(); ok {
		filter = &region
	}
	list, err := s.repo.ListRestaurants(ctx, filter)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Restaurant{}
	}
	return list, nil
}

// Get returns one restaurant with its menu.
func (s *Service) Get(ctx context.Context, p rbac.Principal, id string) (Restaurant, error) {
	if err := rbac.Permit(p, rbac.OpViewRestaurant); err != nil {
		return Restaurant{}, err
	}
	rest, err := s.repo.GetRestaurant(ctx, id)
	if err != nil {
		return Restaurant{}, err
	}
	if err := rbac.RequireRegion(p, rest.Region); err != nil {
		return Restaurant{}, err
	}
	return rest, nil
}

// UpdateMenuItemPrice changes the current price of a dish. Existing orders keep
// the price they were placed at.
func (s *Service) UpdateMenuItemPrice(ctx context.Context, p rbac.Principal, id string, price decimal.Decimal) (MenuItem, error) {
	if err := rbac.Permit(p, rbac.OpUpdateMenuPrice); err != nil {
		return MenuItem{}, err
	}
	price = price.Round(2)
	if !price.IsPositive() {
		return MenuItem{}, fmt.Errorf("%w: price must be at least 0.01", shared.ErrInvalidInput)
	}
	if price.GreaterThan(MaxPrice) {
		return MenuItem{}, fmt.Errorf("%w: price exceeds %s", shared.ErrInvalidInput, MaxPrice.StringFixed(2))
	}
	_, region, err := s.repo.GetMenuItem(ctx, id)
	if err != nil {
		return MenuItem{}, err
	}
	if err := rbac.RequireRegion(p, region); err != nil {
		return MenuItem{}, err
	}
	item, err := s.repo.UpdateMenuItemPrice(ctx, id, price)
	if err != nil {
		return MenuItem{}, err
	}
	s.logger.Info("menu price updated",
		slog.String("menu_item_id", id),
		slog.String("price", item.Price.StringFixed(2)),
		slog.String("principal", p.ID),
	)
	return item, nil
}
