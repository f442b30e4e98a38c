package user

import (
	"context"
	"log/slog"

	internal "github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/authz"
	"github.com/frahmantamala/company-management/internal/identity"
)

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	Update(ctx context.Context, u *User) error
}

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

// GetProfile returns the logged-in user's own view.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := u.Profile()
	return &profile, nil
}

// ApplyAssignment consumes a validated invitation: the admin owning the
// target company promotes a user to employee of one of its branches with an
// initial permission matrix. Admins cannot be demoted this way.
func (s *Service) ApplyAssignment(ctx context.Context, principal *identity.Identity, dto AssignmentDTO) (*Profile, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.requireOwnership(ctx, principal, dto.CompanyID); err != nil {
		s.logger.Warn("assignment denied", "company_id", dto.CompanyID, "user_id", principal.UserID)
		return nil, err
	}

	branch, err := s.lookup.FetchBranchProjection(ctx, dto.BranchID)
	if err != nil {
		return nil, err
	}
	if branch.CompanyID != dto.CompanyID || !branch.Active {
		return nil, internal.NewValidationFieldError("branch_id", "branch does not belong to the company or is inactive", internal.ErrCodeValidationFailed)
	}

	target, err := s.repo.GetByID(ctx, dto.UserID)
	if err != nil {
		return nil, err
	}
	if target.Role == identity.RoleAdmin {
		return nil, internal.NewConflictError("admins cannot be assigned to a branch", internal.ErrCodeRoleNotAllowed)
	}

	branchID := dto.BranchID
	target.Role = identity.RoleEmployee
	target.AccountState = identity.AccountActive
	target.AssignedBranchID = &branchID
	target.Permissions = dto.Permissions

	if err := s.repo.Update(ctx, target); err != nil {
		s.logger.Error("failed to apply assignment", "error", err, "target_id", dto.UserID)
		return nil, err
	}

	s.logger.Info("assignment applied", "target_id", dto.UserID, "branch_id", dto.BranchID, "company_id", dto.CompanyID)
	profile := target.Profile()
	return &profile, nil
}

// UpdatePermissions replaces the matrix of an employee working in a company
// owned by the principal.
func (s *Service) UpdatePermissions(ctx context.Context, principal *identity.Identity, targetID int64, dto UpdatePermissionsDTO) (*Profile, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role != identity.RoleEmployee || target.AssignedBranchID == nil {
		return nil, internal.NewConflictError("only employees carry a permission matrix", internal.ErrCodeValidationFailed)
	}

	branch, err := s.lookup.FetchBranchProjection(ctx, *target.AssignedBranchID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, principal, branch.CompanyID); err != nil {
		s.logger.Warn("permission update denied", "target_id", targetID, "user_id", principal.UserID)
		return nil, err
	}

	target.Permissions = dto.Permissions
	if err := s.repo.Update(ctx, target); err != nil {
		s.logger.Error("failed to update permissions", "error", err, "target_id", targetID)
		return nil, err
	}

	s.logger.Info("permissions updated", "target_id", targetID, "by", principal.UserID)
	profile := target.Profile()
	return &profile, nil
}

func (s *Service) requireOwnership(ctx context.Context, principal *identity.Identity, companyID int64) error {
	company, err := s.lookup.FetchCompanyProjection(ctx, companyID)
	if err != nil {
		return err
	}
	return authz.OwnershipGate(principal, company)
}
