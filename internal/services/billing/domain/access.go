package domain

// Role describes an actor's position in the studio.
type Role string

const (
	// RoleOwner is the studio owner with full access.
	RoleOwner Role = "owner"
	// RoleManager is a branch manager with full billing access.
	RoleManager Role = "manager"
	// RoleStaff is a staff member scoped to their own branch.
	RoleStaff Role = "staff"
)

// Actor is the authenticated caller, carrying a role and optional branch
// scope for access decisions.
type Actor struct {
	ID       string
	Role     Role
	BranchID string
}

// AccessGate supplies access decisions for billing operations. It is
// consulted once at the top of each operation.
type AccessGate interface {
	// IsPrivileged reports whether the actor may run privileged mutations:
	// installment adjustment, direct edit/delete, and the overdue sweep.
	IsPrivileged(actor Actor) bool
	// CanReadOrder reports whether the actor may read and record payments
	// against the order. Non-privileged actors are branch scoped.
	CanReadOrder(actor Actor, order Order) bool
}

// denyAll is the fallback gate when the service is wired without one.
type denyAll struct{}

func (denyAll) IsPrivileged(Actor) bool        { return false }
func (denyAll) CanReadOrder(Actor, Order) bool { return false }
