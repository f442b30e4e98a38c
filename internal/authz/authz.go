// Package authz holds the pure authorization gates. Gates decide, callers
// translate: every deny comes back as a distinct forbidden AppError and the
// transport layer maps it to the externally visible failure.
//
// Callers apply the gates in order RoleGate, BranchAccessGate,
// PermissionGate; each short-circuits on deny.
package authz

import (
	"context"

	"github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/identity"
)

// CompanyProjection is the minimal company read needed by the gates.
type CompanyProjection struct {
	ID      int64
	OwnerID int64
	Active  bool
}

// BranchProjection is the minimal branch read needed by the gates.
type BranchProjection struct {
	ID        int64
	CompanyID int64
	Active    bool
}

// ResourceLookup reads gate projections from the store. Implementations
// return internal.ErrCompanyNotFound / internal.ErrBranchNotFound.
type ResourceLookup interface {
	FetchCompanyProjection(ctx context.Context, companyID int64) (*CompanyProjection, error)
	FetchBranchProjection(ctx context.Context, branchID int64) (*BranchProjection, error)
}

// RoleGate denies unless the principal's role is in the allowed set. Deny is
// terminal: no resource lookup happens after a role denial.
func RoleGate(principal *identity.Identity, allowed ...identity.Role) error {
	for _, role := range allowed {
		if principal.Role == role {
			return nil
		}
	}
	return internal.ErrRoleNotAllowed
}

// OwnershipGate allows only the admin that owns the company, and only while
// the company is active.
func OwnershipGate(principal *identity.Identity, company *CompanyProjection) error {
	if principal.Role != identity.RoleAdmin {
		return internal.ErrNotOwner
	}
	if company == nil || !company.Active {
		return internal.ErrNotOwner
	}
	if principal.UserID != company.OwnerID {
		return internal.ErrNotOwner
	}
	return nil
}

// AssignmentGate allows only the employee assigned to exactly this branch.
// The permission matrix plays no part here.
func AssignmentGate(principal *identity.Identity, branchID int64) error {
	if principal.Role != identity.RoleEmployee {
		return internal.ErrBranchMismatch
	}
	if principal.AssignedBranchID == nil || *principal.AssignedBranchID != branchID {
		return internal.ErrBranchMismatch
	}
	return nil
}

// BranchAccessGate dispatches on role: admins go through ownership of the
// branch's company, employees through branch assignment, every other role is
// denied. Ownership and assignment are kept as separate predicates because
// their failure semantics differ; a future role adds a case here without
// touching either.
func BranchAccessGate(ctx context.Context, principal *identity.Identity, branchID int64, lookup ResourceLookup) error {
	switch principal.Role {
	case identity.RoleAdmin:
		branch, err := lookup.FetchBranchProjection(ctx, branchID)
		if err != nil {
			return err
		}
		company, err := lookup.FetchCompanyProjection(ctx, branch.CompanyID)
		if err != nil {
			return err
		}
		return OwnershipGate(principal, company)
	case identity.RoleEmployee:
		return AssignmentGate(principal, branchID)
	default:
		return internal.ErrRoleNotAllowed
	}
}

// PermissionGate checks the employee's matrix for module/action. Admins
// bypass the matrix entirely. Absent module or action denies.
func PermissionGate(principal *identity.Identity, module string, action identity.Action) error {
	if principal.Role == identity.RoleAdmin {
		return nil
	}
	if principal.Permissions.Allows(module, action) {
		return nil
	}
	return internal.ErrMissingPermission
}
