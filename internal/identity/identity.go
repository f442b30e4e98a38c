package identity

import (
	"context"
	"fmt"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleGuest    Role = "guest"
	RoleOperator Role = "operator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleGuest, RoleOperator:
		return true
	}
	return false
}

type AccountState string

const (
	AccountPending   AccountState = "pending"
	AccountActive    AccountState = "active"
	AccountSuspended AccountState = "suspended"
)

// Identity is the per-request principal built from a verified credential.
// It is constructed once by the auth middleware and never mutated afterwards.
type Identity struct {
	UserID           int64
	Email            string
	Role             Role
	AccountState     AccountState
	AssignedBranchID *int64
	Permissions      PermissionMatrix
}

// Validate enforces the role invariant: AssignedBranchID and Permissions are
// set iff the role is employee.
func (i *Identity) Validate() error {
	if !i.Role.Valid() {
		return fmt.Errorf("unknown role %q", i.Role)
	}
	if i.Role == RoleEmployee {
		if i.AssignedBranchID == nil {
			return fmt.Errorf("employee %d has no assigned branch", i.UserID)
		}
		if i.Permissions == nil {
			return fmt.Errorf("employee %d has no permission matrix", i.UserID)
		}
		return nil
	}
	if i.AssignedBranchID != nil {
		return fmt.Errorf("role %s must not carry a branch assignment", i.Role)
	}
	if i.Permissions != nil {
		return fmt.Errorf("role %s must not carry a permission matrix", i.Role)
	}
	return nil
}

func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func (i *Identity) IsEmployee() bool {
	return i.Role == RoleEmployee
}

func (i *Identity) IsSuspended() bool {
	return i.AccountState == AccountSuspended
}

type ctxKey string

const contextIdentityKey ctxKey = "identity"

func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextIdentityKey).(*Identity)
	return id, ok
}

func ContextWith(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextIdentityKey, id)
}
