package rbac

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slooze/foodorder/internal/shared"
)

var allRegions = []Region{RegionIndia, RegionAmerica}

func TestAuthorizeAdminAlwaysAllowed(t *testing.T) {
	admin := Principal{ID: "u-admin", Role: RoleAdmin}
	for _, r := range append(allRegions, Region("MARS")) {
		assert.Equal(t, Allow, Authorize(admin, r), "region %s", r)
	}
}

func TestAuthorizeNonAdminMatchesOwnRegionOnly(t *testing.T) {
	for _, role := range []Role{RoleManager, RoleMember} {
		for _, home := range allRegions {
			p := Principal{ID: "u", Role: role, Region: RegionPtr(home)}
			for _, target := range allRegions {
				want := Deny
				if home == target {
					want = Allow
				}
				assert.Equal(t, want, Authorize(p, target), "%s@%s -> %s", role, home, target)
			}
		}
	}
}

func TestAuthorizeFailsClosed(t *testing.T) {
	cases := map[string]Principal{
		"manager without region": {ID: "u", Role: RoleManager},
		"member without region":  {ID: "u", Role: RoleMember},
		"unknown role":            {ID: "u", Role: Role("OWNER"), Region: RegionPtr(RegionIndia)},
		"unknown region":          {ID: "u", Role: RoleMember, Region: RegionPtr(Region("MARS"))},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			for _, r := range allRegions {
				assert.Equal(t, Deny, Authorize(p, r))
			}
			assert.Equal(t, Deny, Authorize(p, Region("MARS")))
			assert.Equal(t, Deny, Authorize(p, Region("")))
		})
	}
}

func TestScopeFor(t *testing.T) {
	admin := ScopeFor(Principal{ID: "a", Role: RoleAdmin})
	assert.True(t, admin.Global())
	assert.False(t, admin.Empty())
	_, ok := admin.Region()
	assert.False(t, ok)

	manager := ScopeFor(Principal{ID: "m", Role: RoleManager, Region: RegionPtr(RegionAmerica)})
	region, ok := manager.Region()
	require.True(t, ok)
	assert.Equal(t, RegionAmerica, region)

	broken := ScopeFor(Principal{ID: "x", Role: RoleMember})
	assert.True(t, broken.Empty())
	_, ok = broken.Region()
	assert.False(t, ok)
}

func TestPermitUsesOperationTable(t *testing.T) {
	member := Principal{ID: "m", Role: RoleMember, Region: RegionPtr(RegionIndia)}
	manager := Principal{ID: "g", Role: RoleManager, Region: RegionPtr(RegionIndia)}
	admin := Principal{ID: "a", Role: RoleAdmin}

	assert.NoError(t, Permit(member, OpCreateOrder))
	assert.NoError(t, Permit(member, OpListOrders))
	assert.ErrorIs(t, Permit(member, OpPayOrder), shared.ErrForbidden)
	assert.ErrorIs(t, Permit(member, OpCancelOrder), shared.ErrForbidden)
	assert.ErrorIs(t, Permit(member, OpCreatePayment), shared.ErrForbidden)

	assert.NoError(t, Permit(manager, OpPayOrder))
	assert.NoError(t, Permit(manager, OpCancelOrder))
	assert.ErrorIs(t, Permit(manager, OpListPaymentMethod), shared.ErrForbidden)

	for op := range operationRoles {
		assert.NoError(t, Permit(admin, op), "admin should be allowed %s", op)
	}
}

func TestPermitRejectsUnknownOperationAndBrokenPrincipal(t *testing.T) {
	admin := Principal{ID: "a", Role: RoleAdmin}
	assert.ErrorIs(t, Permit(admin, Operation("orders.refund")), shared.ErrForbidden)

	regionless := Principal{ID: "m", Role: RoleManager}
	assert.ErrorIs(t, Permit(regionless, OpListOrders), shared.ErrForbidden)
}

func TestParseRoleAndRegion(t *testing.T) {
	role, err := ParseRole(" manager ")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, role)
	_, err = ParseRole("chef")
	assert.Error(t, err)

	region, err := ParseRegion("india")
	require.NoError(t, err)
	require.NotNil(t, region)
	assert.Equal(t, RegionIndia, *region)

	region, err = ParseRegion("")
	require.NoError(t, err)
	assert.Nil(t, region)

	_, err = ParseRegion("europe")
	assert.Error(t, err)
}

type recordingObserver struct {
	allowed, denied int
}

func (o *recordingObserver) ObserveAccess(op string, allowed bool) {
	if allowed {
		o.allowed++
		return
	}
	o.denied++
}

func TestGuardMiddleware(t *testing.T) {
	obs := &recordingObserver{}
	mw := Middleware{Observer: obs}
	called := false
	h := mw.Guard(OpPayOrder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	// no principal
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/orders/1/pay", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, called)

	// member denied
	req := httptest.NewRequest(http.MethodPost, "/orders/1/pay", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), Principal{ID: "m", Role: RoleMember, Region: RegionPtr(RegionIndia)}))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"FORBIDDEN"`)
	assert.False(t, called)

	// manager allowed
	req = httptest.NewRequest(http.MethodPost, "/orders/1/pay", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), Principal{ID: "g", Role: RoleManager, Region: RegionPtr(RegionIndia)}))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.True(t, called)

	assert.Equal(t, 1, obs.allowed)
	assert.Equal(t, 1, obs.denied)
}

func TestRequireRegion(t *testing.T) {
	p := Principal{ID: "m", Role: RoleMember, Region: RegionPtr(RegionIndia)}
	assert.NoError(t, RequireRegion(p, RegionIndia))
	err := RequireRegion(p, RegionAmerica)
	assert.True(t, errors.Is(err, shared.ErrForbidden))
}
