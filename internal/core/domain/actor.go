package domain

import "strings"

// Role is the storefront role held by an actor.
type Role string

// Known roles. Owner, partner and admin are elevated.
const (
	RoleOwner    Role = "owner"
	RolePartner  Role = "partner"
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Actor is the authenticated storefront user.
type Actor struct {
	// ID is the remote user identifier.
	ID string `json:"id" yaml:"id"`

	// Name is a display name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Role determines access to role-gated collections.
	Role Role `json:"role" yaml:"role"`

	// Token is the bearer token sent to the remote API.
	Token string `json:"-" yaml:"-"`
}

// IsElevated reports whether the actor may read role-gated collections.
func (a *Actor) IsElevated() bool {
	if a == nil {
		return false
	}
	switch Role(strings.ToLower(string(a.Role))) {
	case RoleOwner, RolePartner, RoleAdmin:
		return true
	}
	return false
}
