package branch

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/company-management/internal/authz"
	"github.com/frahmantamala/company-management/internal/identity"
)

type Repository interface {
	Create(ctx context.Context, b *Branch) error
	GetByID(ctx context.Context, id int64) (*Branch, error)
	GetByCompany(ctx context.Context, companyID int64) ([]*Branch, error)
	Update(ctx context.Context, b *Branch) error
}

// Service manages branches under a company. Writes are admin-only and go
// through the ownership check of the parent company; the read side serves
// the gates and the gated branch-info view.
type Service struct {
	repo   Repository
	lookup authz.ResourceLookup
	logger *slog.Logger
}

func NewService(repo Repository, lookup authz.ResourceLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		lookup: lookup,
		logger: logger,
	}
}

// Create adds a branch under one of the principal's active companies.
func (s *Service) Create(ctx context.Context, principal *identity.Identity, companyID int64, dto CreateBranchDTO) (*Branch, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	company, err := s.lookup.FetchCompanyProjection(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := authz.OwnershipGate(principal, company); err != nil {
		s.logger.Warn("branch create denied", "company_id", companyID, "user_id", principal.UserID)
		return nil, err
	}

	b := NewBranch(companyID, dto)
	if err := s.repo.Create(ctx, b); err != nil {
		s.logger.Error("failed to create branch", "error", err, "company_id", companyID)
		return nil, err
	}

	s.logger.Info("branch created", "branch_id", b.ID, "company_id", companyID)
	return b, nil
}

// List returns every branch of the company, inactive ones included.
func (s *Service) List(ctx context.Context, principal *identity.Identity, companyID int64) ([]*Branch, error) {
	company, err := s.lookup.FetchCompanyProjection(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := authz.OwnershipGate(principal, company); err != nil {
		return nil, err
	}

	return s.repo.GetByCompany(ctx, companyID)
}

// Deactivate retires a branch. Employees assigned to it keep their
// assignment but the branch access gate starts denying through the
// projection's active flag.
func (s *Service) Deactivate(ctx context.Context, principal *identity.Identity, branchID int64) (*Branch, error) {
	b, err := s.repo.GetByID(ctx, branchID)
	if err != nil {
		return nil, err
	}

	company, err := s.lookup.FetchCompanyProjection(ctx, b.CompanyID)
	if err != nil {
		return nil, err
	}
	if err := authz.OwnershipGate(principal, company); err != nil {
		s.logger.Warn("branch deactivate denied", "branch_id", branchID, "user_id", principal.UserID)
		return nil, err
	}

	if err := b.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		s.logger.Error("failed to deactivate branch", "error", err, "branch_id", branchID)
		return nil, err
	}

	s.logger.Info("branch deactivated", "branch_id", branchID)
	return b, nil
}

// GetInfo serves the branch view behind the full gate chain: role, then
// branch access, then the permission matrix. Each gate short-circuits, so a
// role denial never triggers a lookup and a branch mismatch never consults
// the matrix.
func (s *Service) GetInfo(ctx context.Context, principal *identity.Identity, branchID int64) (*Info, error) {
	if err := authz.RoleGate(principal, identity.RoleAdmin, identity.RoleEmployee); err != nil {
		return nil, err
	}
	if err := authz.BranchAccessGate(ctx, principal, branchID, s.lookup); err != nil {
		return nil, err
	}
	if err := authz.PermissionGate(principal, identity.ModuleBranchInfo, identity.ActionView); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, branchID)
	if err != nil {
		return nil, err
	}

	info := b.Info()
	return &info, nil
}
