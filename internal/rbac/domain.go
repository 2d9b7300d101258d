package rbac

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the coarse privilege level carried by every principal.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// Region partitions restaurants and their orders.
type Region string

const (
	RegionIndia   Region = "INDIA"
	RegionAmerica Region = "AMERICA"
)

// Valid reports whether r is a known region.
func (r Region) Valid() bool {
	switch r {
	case RegionIndia, RegionAmerica:
		return true
	}
	return false
}

// ParseRole normalises s into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("rbac: unknown role %q", s)
	}
	return r, nil
}

// ParseRegion normalises s into a Region. An empty string yields nil.
func ParseRegion(s string) (*Region, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	r := Region(strings.ToUpper(s))
	if !r.Valid() {
		return nil, fmt.Errorf("rbac: unknown region %q", s)
	}
	return &r, nil
}

// Principal describes the authenticated actor. ADMIN principals carry no region.
type Principal struct {
	ID     string  `json:"id"`
	Email  string  `json:"email"`
	Role   Role    `json:"role"`
	Region *Region `json:"region"`
}

var (
	errUnknownRole    = errors.New("rbac: principal has unknown role")
	errMissingRegion  = errors.New("rbac: non-admin principal without region")
	errUnknownRegion  = errors.New("rbac: principal has unknown region")
	errMissingSubject = errors.New("rbac: principal without id")
)

// Validate checks the principal invariants.
func (p Principal) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errMissingSubject
	}
	if !p.Role.Valid() {
		return errUnknownRole
	}
	if p.Region != nil && !p.Region.Valid() {
		return errUnknownRegion
	}
	if p.Role != RoleAdmin && p.Region == nil {
		return errMissingRegion
	}
	return nil
}

// IsAdmin reports whether the principal has global scope.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// RegionName returns the region as a string, empty for global principals.
func (p Principal) RegionName() string {
	if p.Region == nil {
		return ""
	}
	return string(*p.Region)
}

// RegionPtr is a convenience for building principals and fixtures.
func RegionPtr(r Region) *Region {
	return &r
}
