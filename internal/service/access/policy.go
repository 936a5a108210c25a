// internal/service/access/policy.go
package access

import (
	"flota-service/internal/domain/unit"
	"flota-service/internal/domain/user"
)

// Policy decides whether a principal may see or mutate a record based on
// organizational unit. It is pure: configuration in, booleans out.
type Policy struct {
	// ProtectedIDs are account ids exempt from destructive operations
	// (the seeded root admin cannot be deleted or demoted). Configuration,
	// not hardcoded logic.
	ProtectedIDs map[int64]bool
}

func NewPolicy(protectedIDs []int64) *Policy {
	ids := make(map[int64]bool, len(protectedIDs))
	for _, id := range protectedIDs {
		ids[id] = true
	}
	return &Policy{ProtectedIDs: ids}
}

// CanRead reports whether p may read a vehicle carrying the given unit
// label. Admins read everything; everyone else only their own unit.
func (pl *Policy) CanRead(p user.Principal, unitLabel string) bool {
	if p.Admin {
		return true
	}
	return p.Unidad != "" && p.Unidad == unit.Normalize(unitLabel)
}

// CanWrite reports whether p may create, update or delete a vehicle in the
// given unit. Same rule as reads; the explicit-filter override of listing
// never applies to writes.
func (pl *Policy) CanWrite(p user.Principal, unitLabel string) bool {
	return pl.CanRead(p, unitLabel)
}

// CanDeleteUser gates destructive user management.
func (pl *Policy) CanDeleteUser(p user.Principal, targetID int64) bool {
	return p.Admin && !pl.ProtectedIDs[targetID]
}

// CanDemote gates removing the admin flag from an account.
func (pl *Policy) CanDemote(p user.Principal, targetID int64) bool {
	return p.Admin && !pl.ProtectedIDs[targetID]
}
