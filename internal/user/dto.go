package user

import (
	internal "github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/core/common/validation"
	"github.com/frahmantamala/company-management/internal/identity"
)

// AssignmentDTO is the validated payload of an accepted invitation: the
// user joins a branch of a company as an employee with an initial matrix.
// Invitation token issuance and validation happen upstream.
type AssignmentDTO struct {
	UserID      int64                     `json:"user_id"`
	BranchID    int64                     `json:"branch_id"`
	CompanyID   int64                     `json:"company_id"`
	Permissions identity.PermissionMatrix `json:"permissions"`
}

func (d AssignmentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("user_id", d.UserID).Positive()
	v.Field("branch_id", d.BranchID).Positive()
	v.Field("company_id", d.CompanyID).Positive()
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}

	if d.Permissions == nil {
		return internal.NewValidationFieldError("permissions", "permissions matrix is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdatePermissionsDTO replaces an employee's matrix wholesale.
type UpdatePermissionsDTO struct {
	Permissions identity.PermissionMatrix `json:"permissions"`
}

func (d UpdatePermissionsDTO) Validate() error {
	if d.Permissions == nil {
		return internal.NewValidationFieldError("permissions", "permissions matrix is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
