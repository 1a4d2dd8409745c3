// Package scope builds the read scope a caller is allowed to see, driven by
// their role and district. Repositories translate a Scope into WHERE clauses;
// ScopeNone must always short-circuit to an empty result set (fail closed).
package scope

import "github.com/google/uuid"

// Roles recognised by the system.
const (
	RoleHealthPromoter     = "Health Promoter"
	RoleAdministrator      = "Administrator"
	RoleSuperAdministrator = "Super Administrator"
)

// Kind discriminates the scope variants.
type Kind int

const (
	// KindNone yields no rows. Default so a zero Scope fails closed.
	KindNone Kind = iota
	// KindAll is unrestricted access to the collection.
	KindAll
	// KindDistrict restricts to rows whose district matches.
	KindDistrict
	// KindSelf restricts to rows owned by the caller.
	KindSelf
)

// Scope is the resolved read scope for one collection query.
type Scope struct {
	Kind     Kind
	District string
	UserID   uuid.UUID
}

// All grants unrestricted access.
func All() Scope { return Scope{Kind: KindAll} }

// District restricts to one district.
func District(d string) Scope { return Scope{Kind: KindDistrict, District: d} }

// Self restricts to records owned by userID.
func Self(userID uuid.UUID) Scope { return Scope{Kind: KindSelf, UserID: userID} }

// None yields an empty result set.
func None() Scope { return Scope{Kind: KindNone} }

// ForProfile resolves the scope for activity and attachment collections:
// super administrators see everything, administrators see their district (or
// nothing at all when no district is set), everyone else sees only their own
// records.
func ForProfile(role, district string, userID uuid.UUID) Scope {
	switch role {
	case RoleSuperAdministrator:
		return All()
	case RoleAdministrator:
		if district != "" {
			return District(district)
		}
		return None()
	default:
		return Self(userID)
	}
}

// ForUserDirectory resolves the scope for the user directory. It differs from
// ForProfile in one case: an administrator without a district still sees
// their own profile rather than an empty directory.
func ForUserDirectory(role, district string, userID uuid.UUID) Scope {
	switch role {
	case RoleSuperAdministrator:
		return All()
	case RoleAdministrator:
		if district != "" {
			return District(district)
		}
		return Self(userID)
	default:
		return Self(userID)
	}
}

// ValidRole reports whether role is one of the recognised roles.
func ValidRole(role string) bool {
	switch role {
	case RoleHealthPromoter, RoleAdministrator, RoleSuperAdministrator:
		return true
	}
	return false
}

// Matches reports whether a record with the given owner and district falls
// inside the scope. Used by the live-subscription layer to filter change
// notifications.
func (s Scope) Matches(ownerID uuid.UUID, district string) bool {
	switch s.Kind {
	case KindAll:
		return true
	case KindDistrict:
		return district == s.District
	case KindSelf:
		return ownerID == s.UserID
	default:
		return false
	}
}
