package auth

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// Role is the marketplace role tag carried by every user.
type Role string

const (
	RoleSeller Role = "Seller"
	RoleBuyer  Role = "Buyer"
	RoleBoth   Role = "Both"
	RoleAdmin  Role = "Admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSeller, RoleBuyer, RoleBoth, RoleAdmin:
		return true
	}

	return false
}

// CanSell reports whether the role may publish listings.
func (r Role) CanSell() bool {
	return r == RoleSeller || r == RoleBoth
}

// CanBuy reports whether the role may submit offers.
func (r Role) CanBuy() bool {
	return r == RoleBuyer || r == RoleBoth
}

// Principal is the authenticated identity on whose behalf an operation runs.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// HasRole reports whether the principal holds any of the given roles.
func (p Principal) HasRole(roles ...Role) bool {
	return slices.Contains(roles, p.Role)
}

type contextKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
