package authz_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/authz"
	"github.com/frahmantamala/company-management/internal/identity"
)

func TestAuthz(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Authz Suite")
}

type mockLookup struct {
	companies map[int64]*authz.CompanyProjection
	branches  map[int64]*authz.BranchProjection
	lookups   int
}

func newMockLookup() *mockLookup {
	return &mockLookup{
		companies: make(map[int64]*authz.CompanyProjection),
		branches:  make(map[int64]*authz.BranchProjection),
	}
}

func (m *mockLookup) FetchCompanyProjection(_ context.Context, id int64) (*authz.CompanyProjection, error) {
	m.lookups++
	if c, ok := m.companies[id]; ok {
		return c, nil
	}
	return nil, internal.ErrCompanyNotFound
}

func (m *mockLookup) FetchBranchProjection(_ context.Context, id int64) (*authz.BranchProjection, error) {
	m.lookups++
	if b, ok := m.branches[id]; ok {
		return b, nil
	}
	return nil, internal.ErrBranchNotFound
}

func branchID(id int64) *int64 {
	return &id
}

func admin(userID int64) *identity.Identity {
	return &identity.Identity{UserID: userID, Role: identity.RoleAdmin, AccountState: identity.AccountActive}
}

func employee(userID, branch int64, m identity.PermissionMatrix) *identity.Identity {
	if m == nil {
		m = identity.PermissionMatrix{}
	}
	return &identity.Identity{
		UserID:           userID,
		Role:             identity.RoleEmployee,
		AccountState:     identity.AccountActive,
		AssignedBranchID: branchID(branch),
		Permissions:      m,
	}
}

var _ = Describe("RoleGate", func() {
	It("allows a role in the allowed set", func() {
		Expect(authz.RoleGate(admin(1), identity.RoleAdmin, identity.RoleEmployee)).To(Succeed())
	})

	It("denies a role outside the allowed set", func() {
		guest := &identity.Identity{UserID: 3, Role: identity.RoleGuest}
		err := authz.RoleGate(guest, identity.RoleAdmin, identity.RoleEmployee)
		Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
	})
})

var _ = Describe("OwnershipGate", func() {
	It("allows the owning admin of an active company", func() {
		company := &authz.CompanyProjection{ID: 10, OwnerID: 1, Active: true}
		Expect(authz.OwnershipGate(admin(1), company)).To(Succeed())
	})

	It("denies an admin who is not the owner", func() {
		company := &authz.CompanyProjection{ID: 10, OwnerID: 2, Active: true}
		Expect(authz.OwnershipGate(admin(1), company)).To(MatchError(internal.ErrNotOwner))
	})

	It("denies when the company is inactive", func() {
		company := &authz.CompanyProjection{ID: 10, OwnerID: 1, Active: false}
		Expect(authz.OwnershipGate(admin(1), company)).To(MatchError(internal.ErrNotOwner))
	})

	It("denies a malformed nil projection", func() {
		Expect(authz.OwnershipGate(admin(1), nil)).To(MatchError(internal.ErrNotOwner))
	})

	It("denies non-admin roles even for matching user ids", func() {
		company := &authz.CompanyProjection{ID: 10, OwnerID: 5, Active: true}
		Expect(authz.OwnershipGate(employee(5, 7, nil), company)).To(MatchError(internal.ErrNotOwner))
	})
})

var _ = Describe("AssignmentGate", func() {
	It("allows the employee assigned to the branch", func() {
		Expect(authz.AssignmentGate(employee(5, 7, nil), 7)).To(Succeed())
	})

	It("denies an employee assigned to a different branch", func() {
		Expect(authz.AssignmentGate(employee(5, 7, nil), 8)).To(MatchError(internal.ErrBranchMismatch))
	})

	It("ignores permission matrix content entirely", func() {
		rich := identity.PermissionMatrix{
			identity.ModuleProducts: {CanView: true, CanCreate: true, CanEdit: true, CanDelete: true},
		}
		Expect(authz.AssignmentGate(employee(5, 7, rich), 8)).To(MatchError(internal.ErrBranchMismatch))
		Expect(authz.AssignmentGate(employee(5, 7, nil), 7)).To(Succeed())
	})

	It("denies non-employee roles", func() {
		Expect(authz.AssignmentGate(admin(1), 7)).To(MatchError(internal.ErrBranchMismatch))
	})
})

var _ = Describe("BranchAccessGate", func() {
	var lookup *mockLookup

	BeforeEach(func() {
		lookup = newMockLookup()
		lookup.branches[7] = &authz.BranchProjection{ID: 7, CompanyID: 10, Active: true}
		lookup.companies[10] = &authz.CompanyProjection{ID: 10, OwnerID: 1, Active: true}
	})

	It("routes admins through ownership of the branch's company", func() {
		Expect(authz.BranchAccessGate(context.Background(), admin(1), 7, lookup)).To(Succeed())
		Expect(authz.BranchAccessGate(context.Background(), admin(2), 7, lookup)).To(MatchError(internal.ErrNotOwner))
	})

	It("routes employees through branch assignment without any lookup", func() {
		Expect(authz.BranchAccessGate(context.Background(), employee(5, 7, nil), 7, lookup)).To(Succeed())
		Expect(lookup.lookups).To(BeZero())
	})

	It("reports a branch mismatch for an employee on another branch", func() {
		err := authz.BranchAccessGate(context.Background(), employee(5, 7, nil), 8, lookup)
		Expect(err).To(MatchError(internal.ErrBranchMismatch))
	})

	It("denies every other role for every resource", func() {
		for _, role := range []identity.Role{identity.RoleGuest, identity.RoleOperator} {
			p := &identity.Identity{UserID: 9, Role: role, AccountState: identity.AccountActive}
			err := authz.BranchAccessGate(context.Background(), p, 7, lookup)
			Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
		}
	})

	It("surfaces not-found from the lookup for admins", func() {
		err := authz.BranchAccessGate(context.Background(), admin(1), 99, lookup)
		Expect(err).To(MatchError(internal.ErrBranchNotFound))
	})
})

var _ = Describe("PermissionGate", func() {
	It("always allows admins", func() {
		Expect(authz.PermissionGate(admin(1), identity.ModuleProducts, identity.ActionDelete)).To(Succeed())
	})

	It("allows an employee only for explicitly granted actions", func() {
		e := employee(5, 7, identity.PermissionMatrix{
			identity.ModuleProducts: {CanEdit: true},
		})
		Expect(authz.PermissionGate(e, identity.ModuleProducts, identity.ActionEdit)).To(Succeed())
		Expect(authz.PermissionGate(e, identity.ModuleProducts, identity.ActionDelete)).To(MatchError(internal.ErrMissingPermission))
	})

	It("denies for a module absent from the matrix", func() {
		e := employee(5, 7, identity.PermissionMatrix{
			identity.ModuleProducts: {CanEdit: true},
		})
		err := authz.PermissionGate(e, identity.ModuleCategories, identity.ActionDelete)
		Expect(err).To(MatchError(internal.ErrMissingPermission))
	})
})

var _ = Describe("Gate ordering", func() {
	It("evaluates role, branch access, then permission for the allowed case", func() {
		lookup := newMockLookup()
		e := employee(5, 7, identity.PermissionMatrix{
			identity.ModuleProducts: {CanEdit: true},
		})

		Expect(authz.RoleGate(e, identity.RoleAdmin, identity.RoleEmployee)).To(Succeed())
		Expect(authz.BranchAccessGate(context.Background(), e, 7, lookup)).To(Succeed())
		Expect(authz.PermissionGate(e, identity.ModuleProducts, identity.ActionEdit)).To(Succeed())
	})

	It("denies with a branch-mismatch reason before permissions are consulted", func() {
		lookup := newMockLookup()
		e := employee(5, 7, identity.PermissionMatrix{
			identity.ModuleProducts: {CanEdit: true},
		})

		err := authz.BranchAccessGate(context.Background(), e, 8, lookup)
		Expect(err).To(MatchError(internal.ErrBranchMismatch))
	})

	It("denies with a missing-permission reason for an ungranted module", func() {
		e := employee(5, 7, identity.PermissionMatrix{
			identity.ModuleProducts: {CanEdit: true},
		})

		err := authz.PermissionGate(e, identity.ModuleCategories, identity.ActionDelete)
		Expect(err).To(MatchError(internal.ErrMissingPermission))
	})
})
