package user

import (
	"time"

	"github.com/frahmantamala/company-management/internal/identity"
	userDatamodel "github.com/frahmantamala/company-management/internal/core/datamodel/user"
)

type User struct {
	ID               int64                     `json:"id"`
	Email            string                    `json:"email"`
	Name             string                    `json:"name"`
	PasswordHash     string                    `json:"-"`
	Role             identity.Role             `json:"role"`
	AccountState     identity.AccountState     `json:"account_state"`
	AssignedBranchID *int64                    `json:"assigned_branch_id,omitempty"`
	Permissions      identity.PermissionMatrix `json:"permissions,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// Profile is the view served to the logged-in user.
type Profile struct {
	ID               int64                     `json:"id"`
	Email            string                    `json:"email"`
	Name             string                    `json:"name"`
	Role             identity.Role             `json:"role"`
	AccountState     identity.AccountState     `json:"account_state"`
	AssignedBranchID *int64                    `json:"assigned_branch_id,omitempty"`
	Permissions      identity.PermissionMatrix `json:"permissions,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		AccountState:     u.AccountState,
		AssignedBranchID: u.AssignedBranchID,
		Permissions:      u.Permissions,
	}
}

func FromDataModel(m *userDatamodel.User) (*User, error) {
	u := &User{
		ID:               m.ID,
		Email:            m.Email,
		Name:             m.Name,
		PasswordHash:     m.PasswordHash,
		Role:             identity.Role(m.Role),
		AccountState:     identity.AccountState(m.AccountState),
		AssignedBranchID: m.AssignedBranchID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}

	if u.Role == identity.RoleEmployee {
		matrix, err := identity.ParseMatrix(m.Permissions)
		if err != nil {
			return nil, err
		}
		u.Permissions = matrix
	}
	return u, nil
}

func ToDataModel(u *User) (*userDatamodel.User, error) {
	model := &userDatamodel.User{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		PasswordHash:     u.PasswordHash,
		Role:             string(u.Role),
		AccountState:     string(u.AccountState),
		AssignedBranchID: u.AssignedBranchID,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}

	if u.Role == identity.RoleEmployee {
		blob, err := u.Permissions.Marshal()
		if err != nil {
			return nil, err
		}
		model.Permissions = blob
	}
	return model, nil
}
