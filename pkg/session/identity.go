// Package session implements the client-side session lifecycle for the
// taskboard API: durable credential storage, identity resolution, a state
// machine over the two, and role-based admission decisions derived from it.
package session

import (
	"sort"

	"github.com/hashicorp/go-set/v3"
)

// Identity is the resolved representation of the authenticated user,
// including the canonical role set. Identities are immutable once built;
// the Manager replaces them wholesale on every resolution.
type Identity struct {
	ID       string
	Username string
	Email    string
	FullName string

	roles *set.Set[string]
}

// NewIdentity builds an Identity from already-normalized role designators.
// Duplicate designators collapse; order is irrelevant.
func NewIdentity(id, username, email, fullName string, roles []string) *Identity {
	return &Identity{
		ID:       id,
		Username: username,
		Email:    email,
		FullName: fullName,
		roles:    set.From(roles),
	}
}

// HasRole reports whether the identity holds the given role designator.
// Safe to call on a nil Identity and on every render/check: it is a pure
// membership test with no side effects.
func (id *Identity) HasRole(role string) bool {
	if id == nil || id.roles == nil {
		return false
	}
	return id.roles.Contains(role)
}

// Roles returns the canonical role designators in sorted order.
func (id *Identity) Roles() []string {
	if id == nil || id.roles == nil {
		return nil
	}
	out := id.roles.Slice()
	sort.Strings(out)
	return out
}
