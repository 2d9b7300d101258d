package restaurants

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/shared"
)

type mockRepository struct {
	restaurants map[string]Restaurant
	listErr     error
}

func newMockRepository() *mockRepository {
	return &mockRepository{restaurants: map[string]Restaurant{
		"r-hyd": {ID: "r-hyd", Name: "Spicy Hyderabad", Region: rbac.RegionIndia, MenuItems: []MenuItem{
			{ID: "m-biryani", RestaurantID: "r-hyd", Name: "Chicken Biryani", Price: decimal.RequireFromString("12.99")},
		}},
		"r-nyc": {ID: "r-nyc", Name: "New York Slice", Region: rbac.RegionAmerica, MenuItems: []MenuItem{
			{ID: "m-pizza", RestaurantID: "r-nyc", Name: "Pepperoni Pizza", Price: decimal.RequireFromString("18.00")},
		}},
	}}
}

func (m *mockRepository) ListRestaurants(ctx context.Context, region *rbac.Region) ([]Restaurant, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Restaurant
	for _, r := range m.restaurants {
		if region == nil || r.Region == *region {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockRepository) GetRestaurant(ctx context.Context, id string) (Restaurant, error) {
	r, ok := m.restaurants[id]
	if !ok {
		return Restaurant{}, fmt.Errorf("%w: restaurant %s", shared.ErrNotFound, id)
	}
	return r, nil
}

func (m *mockRepository) GetMenuItem(ctx context.Context, id string) (MenuItem, rbac.Region, error) {
	for _, r := range m.restaurants {
		if it, ok := r.Item(id); ok {
			return it, r.Region, nil
		}
	}
	return MenuItem{}, "", fmt.Errorf("%w: menu item %s", shared.ErrNotFound, id)
}

func (m *mockRepository) UpdateMenuItemPrice(ctx context.Context, id string, price decimal.Decimal) (MenuItem, error) {
	for key, r := range m.restaurants {
		for i, it := range r.MenuItems {
			if it.ID == id {
				r.MenuItems[i].Price = price
				m.restaurants[key] = r
				return r.MenuItems[i], nil
			}
		}
	}
	return MenuItem{}, shared.ErrNotFound
}

var (
	admin         = rbac.Principal{ID: "u-admin", Role: rbac.RoleAdmin}
	indiaManager  = rbac.Principal{ID: "u-marvel", Role: rbac.RoleManager, Region: rbac.RegionPtr(rbac.RegionIndia)}
	americaMember = rbac.Principal{ID: "u-travis", Role: rbac.RoleMember, Region: rbac.RegionPtr(rbac.RegionAmerica)}
	indiaMember   = rbac.Principal{ID: "u-thanos", Role: rbac.RoleMember, Region: rbac.RegionPtr(rbac.RegionIndia)}
)

func TestListFiltersByScope(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	ctx := context.Background()

	all, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.List(ctx, americaMember)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, rbac.RegionAmerica, own[0].Region)

	broken, err := svc.List(ctx, rbac.Principal{ID: "x", Role: rbac.RoleMember})
	require.NoError(t, err)
	assert.Empty(t, broken)
}

func TestGetAppliesRegionGate(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, americaMember, "r-hyd")
	assert.ErrorIs(t, err, shared.ErrForbidden)

	rest, err := svc.Get(ctx, indiaMember, "r-hyd")
	require.NoError(t, err)
	assert.Equal(t, "Spicy Hyderabad", rest.Name)

	_, err = svc.Get(ctx, admin, "r-nyc")
	assert.NoError(t, err)

	_, err = svc.Get(ctx, admin, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateMenuItemPrice(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.UpdateMenuItemPrice(ctx, indiaMember, "m-biryani", decimal.NewFromInt(20))
	assert.ErrorIs(t, err, shared.ErrForbidden, "members cannot edit menus")

	_, err = svc.UpdateMenuItemPrice(ctx, indiaManager, "m-pizza", decimal.NewFromInt(20))
	assert.ErrorIs(t, err, shared.ErrForbidden, "managers are bound to their region")

	_, err = svc.UpdateMenuItemPrice(ctx, indiaManager, "m-biryani", decimal.Zero)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	for _, raw := range []string{"0.001", "0.004", "-1", "10000000000"} {
		_, err = svc.UpdateMenuItemPrice(ctx, admin, "m-biryani", decimal.RequireFromString(raw))
		assert.ErrorIs(t, err, shared.ErrInvalidInput, raw)
	}
	item, _, err := repo.GetMenuItem(ctx, "m-biryani")
	require.NoError(t, err)
	assert.True(t, item.Price.IsPositive(), "rejected prices never reach the repository")

	_, err = svc.UpdateMenuItemPrice(ctx, admin, "m-none", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, shared.ErrNotFound)

	item, err = svc.UpdateMenuItemPrice(ctx, indiaManager, "m-biryani", decimal.RequireFromString("14.499"))
	require.NoError(t, err)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("14.50")))
}

func newTestRouter(principal *rbac.Principal) http.Handler {
	h := NewHandler(nil, NewService(newMockRepository(), nil), rbac.Middleware{})
	r := chi.NewRouter()
	if principal != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), *principal)))
			})
		})
	}
	h.MountRoutes(r)
	return r
}

func TestHandlerRoutes(t *testing.T) {
	router := newTestRouter(&americaMember)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/restaurants", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "New York Slice")
	assert.NotContains(t, rr.Body.String(), "Spicy Hyderabad")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/restaurants/r-hyd", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/menu-items/m-pizza", strings.NewReader(`{"price":"19.00"}`)))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestHandlerPriceUpdateValidation(t *testing.T) {
	router := newTestRouter(&admin)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/menu-items/m-pizza", strings.NewReader(`{"price":"abc"}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/menu-items/m-pizza", strings.NewReader(`{"price":"21.5"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"price":"21.5"`)
}

func TestHandlerWithoutPrincipal(t *testing.T) {
	router := newTestRouter(nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/restaurants", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
