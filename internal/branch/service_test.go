package branch_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/authz"
	"github.com/frahmantamala/company-management/internal/branch"
	"github.com/frahmantamala/company-management/internal/identity"
)

func TestBranch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Branch Module Suite")
}

type memoryRepo struct {
	branches map[int64]*branch.Branch
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{branches: map[int64]*branch.Branch{}, nextID: 1}
}

func (r *memoryRepo) Create(ctx context.Context, b *branch.Branch) error {
	b.ID = r.nextID
	r.nextID++
	clone := *b
	r.branches[b.ID] = &clone
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id int64) (*branch.Branch, error) {
	b, ok := r.branches[id]
	if !ok {
		return nil, internal.ErrBranchNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *memoryRepo) GetByCompany(ctx context.Context, companyID int64) ([]*branch.Branch, error) {
	var result []*branch.Branch
	for _, b := range r.branches {
		if b.CompanyID == companyID {
			clone := *b
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *memoryRepo) Update(ctx context.Context, b *branch.Branch) error {
	clone := *b
	r.branches[b.ID] = &clone
	return nil
}

type stubLookup struct {
	companies map[int64]*authz.CompanyProjection
	repo      *memoryRepo
}

func (l *stubLookup) FetchCompanyProjection(ctx context.Context, companyID int64) (*authz.CompanyProjection, error) {
	c, ok := l.companies[companyID]
	if !ok {
		return nil, internal.ErrCompanyNotFound
	}
	return c, nil
}

func (l *stubLookup) FetchBranchProjection(ctx context.Context, branchID int64) (*authz.BranchProjection, error) {
	b, ok := l.repo.branches[branchID]
	if !ok {
		return nil, internal.ErrBranchNotFound
	}
	return &authz.BranchProjection{ID: b.ID, CompanyID: b.CompanyID, Active: b.Active}, nil
}

var _ = Describe("Service", func() {
	var (
		repo   *memoryRepo
		lookup *stubLookup
		svc    *branch.Service
		ctx    context.Context

		owner    *identity.Identity
		stranger *identity.Identity
	)

	const companyID = int64(10)

	BeforeEach(func() {
		repo = newMemoryRepo()
		lookup = &stubLookup{
			companies: map[int64]*authz.CompanyProjection{
				companyID: {ID: companyID, OwnerID: 1, Active: true},
			},
			repo: repo,
		}
		svc = branch.NewService(repo, lookup, slog.Default())
		ctx = context.Background()

		owner = &identity.Identity{UserID: 1, Role: identity.RoleAdmin, AccountState: identity.AccountActive}
		stranger = &identity.Identity{UserID: 2, Role: identity.RoleAdmin, AccountState: identity.AccountActive}
	})

	employeeAt := func(branchID int64, matrix identity.PermissionMatrix) *identity.Identity {
		return &identity.Identity{
			UserID:           5,
			Role:             identity.RoleEmployee,
			AccountState:     identity.AccountActive,
			AssignedBranchID: &branchID,
			Permissions:      matrix,
		}
	}

	Describe("Create", func() {
		It("creates an active branch for the owning admin", func() {
			b, err := svc.Create(ctx, owner, companyID, branch.CreateBranchDTO{Name: "Downtown"})
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Active).To(BeTrue())
			Expect(b.CompanyID).To(Equal(companyID))
		})

		It("denies an admin that does not own the company", func() {
			_, err := svc.Create(ctx, stranger, companyID, branch.CreateBranchDTO{Name: "Downtown"})
			Expect(err).To(MatchError(internal.ErrNotOwner))
		})

		It("denies creation under an archived company", func() {
			lookup.companies[companyID].Active = false
			_, err := svc.Create(ctx, owner, companyID, branch.CreateBranchDTO{Name: "Downtown"})
			Expect(err).To(MatchError(internal.ErrNotOwner))
		})

		It("rejects a blank name", func() {
			_, err := svc.Create(ctx, owner, companyID, branch.CreateBranchDTO{Name: "  "})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Deactivate", func() {
		It("deactivates an active branch", func() {
			b, err := svc.Create(ctx, owner, companyID, branch.CreateBranchDTO{Name: "Downtown"})
			Expect(err).NotTo(HaveOccurred())

			off, err := svc.Deactivate(ctx, owner, b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(off.Active).To(BeFalse())
		})

		It("rejects deactivating twice", func() {
			b, err := svc.Create(ctx, owner, companyID, branch.CreateBranchDTO{Name: "Downtown"})
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Deactivate(ctx, owner, b.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Deactivate(ctx, owner, b.ID)
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeBranchInactive))
		})

		It("returns not found for a missing branch", func() {
			_, err := svc.Deactivate(ctx, owner, 999)
			Expect(err).To(MatchError(internal.ErrBranchNotFound))
		})
	})

	Describe("GetInfo", func() {
		var branchID int64

		BeforeEach(func() {
			b, err := svc.Create(ctx, owner, companyID, branch.CreateBranchDTO{Name: "Downtown"})
			Expect(err).NotTo(HaveOccurred())
			branchID = b.ID
		})

		It("serves the owning admin without a permission matrix", func() {
			info, err := svc.GetInfo(ctx, owner, branchID)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Name).To(Equal("Downtown"))
		})

		It("serves the assigned employee holding the view permission", func() {
			emp := employeeAt(branchID, identity.PermissionMatrix{
				identity.ModuleBranchInfo: {CanView: true},
			})
			info, err := svc.GetInfo(ctx, emp, branchID)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.ID).To(Equal(branchID))
		})

		It("denies the assigned employee without the view permission", func() {
			emp := employeeAt(branchID, identity.PermissionMatrix{})
			_, err := svc.GetInfo(ctx, emp, branchID)
			Expect(err).To(MatchError(internal.ErrMissingPermission))
		})

		It("denies an employee assigned elsewhere before the matrix is consulted", func() {
			emp := employeeAt(branchID+100, identity.PermissionMatrix{
				identity.ModuleBranchInfo: {CanView: true},
			})
			_, err := svc.GetInfo(ctx, emp, branchID)
			Expect(err).To(MatchError(internal.ErrBranchMismatch))
		})

		It("denies guests and operators at the role gate", func() {
			guest := &identity.Identity{UserID: 9, Role: identity.RoleGuest, AccountState: identity.AccountActive}
			_, err := svc.GetInfo(ctx, guest, branchID)
			Expect(err).To(MatchError(internal.ErrRoleNotAllowed))

			operator := &identity.Identity{UserID: 10, Role: identity.RoleOperator, AccountState: identity.AccountActive}
			_, err = svc.GetInfo(ctx, operator, branchID)
			Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
		})
	})
})
