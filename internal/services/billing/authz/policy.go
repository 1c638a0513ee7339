// Package authz implements the billing access policy. Owners and managers
// hold the privileged capability; staff are scoped to orders in their own
// branch.
package authz

import "github.com/inkledger/inkledger/internal/services/billing/domain"

// Policy decides billing access by role and branch.
type Policy struct{}

// NewPolicy constructs the billing access policy.
func NewPolicy() Policy {
	return Policy{}
}

// IsPrivileged reports whether the actor may run privileged mutations.
func (Policy) IsPrivileged(actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleOwner, domain.RoleManager:
		return true
	default:
		return false
	}
}

// CanReadOrder reports whether the actor may read and record payments
// against the order. Staff must share the order's branch.
func (p Policy) CanReadOrder(actor domain.Actor, order domain.Order) bool {
	if p.IsPrivileged(actor) {
		return true
	}
	if actor.Role != domain.RoleStaff {
		return false
	}
	return actor.BranchID != "" && actor.BranchID == order.BranchID
}
