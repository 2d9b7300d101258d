package rbac

// Decision is the outcome of the region rule.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "ALLOW"
	}
	return "DENY"
}

// Authorize applies the region rule: ADMIN is global, everyone else is confined to
// their own region. Unknown roles and regionless non-admins are denied.
func Authorize(p Principal, resource Region) Decision {
	if p.Role == RoleAdmin {
		return Allow
	}
	if !p.Role.Valid() || p.Region == nil || !p.Region.Valid() {
		return Deny
	}
	if *p.Region == resource {
		return Allow
	}
	return Deny
}

// Scope is the set of regions a principal may list.
type Scope struct {
	global bool
	region Region
}

// ScopeFor derives the listing scope. Principals that fail Validate get an empty scope.
func ScopeFor(p Principal) Scope {
	if err := p.Validate(); err != nil {
		return Scope{}
	}
	if p.Role == RoleAdmin {
		return Scope{global: true}
	}
	return Scope{region: *p.Region}
}

// Global reports whether the scope spans all regions.
func (s Scope) Global() bool { return s.global }

// Empty reports whether nothing is visible.
func (s Scope) Empty() bool { return !s.global && s.region == "" }

// Region returns the single visible region; ok is false for global or empty scopes.
func (s Scope) Region() (Region, bool) {
	if s.global || s.region == "" {
		return "", false
	}
	return s.region, true
}
