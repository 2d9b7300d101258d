package rbac

import (
	"fmt"

	"github.com/slooze/foodorder/internal/shared"
)

// Operation names an API action guarded by the role table.
type Operation string

const (
	OpMe Operation = "auth.me"

	OpListRestaurants   Operation = "restaurants.list"
	OpViewRestaurant    Operation = "restaurants.view"
	OpUpdateMenuPrice   Operation = "restaurants.menu.update_price"
	OpListOrders        Operation = "orders.list"
	OpViewOrder         Operation = "orders.view"
	OpCreateOrder       Operation = "orders.create"
	OpPayOrder          Operation = "orders.pay"
	OpCancelOrder       Operation = "orders.cancel"
	OpListPaymentMethod Operation = "payment_methods.list"
	OpCreatePayment     Operation = "payment_methods.create"
	OpRemovePayment     Operation = "payment_methods.remove"
	OpViewAuditLog      Operation = "audit_logs.view"
)

var everyone = []Role{RoleAdmin, RoleManager, RoleMember}

// operationRoles is the single source of truth for role gates.
var operationRoles = map[Operation][]Role{
	OpMe: everyone,

	OpListRestaurants: everyone,
	OpViewRestaurant:  everyone,
	OpUpdateMenuPrice: {RoleAdmin, RoleManager},

	OpListOrders:  everyone,
	OpViewOrder:   everyone,
	OpCreateOrder: everyone,
	OpPayOrder:    {RoleAdmin, RoleManager},
	OpCancelOrder: {RoleAdmin, RoleManager},

	OpListPaymentMethod: {RoleAdmin},
	OpCreatePayment:     {RoleAdmin},
	OpRemovePayment:     {RoleAdmin},
	OpViewAuditLog:      {RoleAdmin},
}

// Permit is the role gate dispatcher. Unknown operations and principals that break
// the region invariant are rejected.
func Permit(p Principal, op Operation) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrForbidden, err)
	}
	roles, ok := operationRoles[op]
	if !ok {
		return fmt.Errorf("%w: unknown operation %s", shared.ErrForbidden, op)
	}
	for _, r := range roles {
		if r == p.Role {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s may not perform %s", shared.ErrForbidden, p.Role, op)
}

// RequireRegion turns the region rule into an error for single-resource checks.
func RequireRegion(p Principal, resource Region) error {
	if Authorize(p, resource) == Deny {
		return fmt.Errorf("%w: %s resources are not visible from region %q", shared.ErrForbidden, resource, p.RegionName())
	}
	return nil
}
