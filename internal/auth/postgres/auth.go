package postgres

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	internal "github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/identity"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredentialsByEmail(email string) (string, int64, error) {
	var (
		passwordHash string
		userID       int64
	)
	query := `SELECT id, password_hash FROM users WHERE email = ?`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, internal.ErrUserNotFound
		}
		return "", 0, err
	}
	return passwordHash, userID, nil
}

// GetIdentityByID loads the principal in one read. The permission blob is
// deserialized here so gates never touch JSON.
func (r *Repository) GetIdentityByID(userID int64) (*identity.Identity, error) {
	var row struct {
		ID               int64
		Email            string
		Role             string
		AccountState     string
		AssignedBranchID *int64
		Permissions      []byte
	}

	query := `SELECT id, email, role, account_state, assigned_branch_id, permissions
	          FROM users WHERE id = ?`
	if err := r.db.Raw(query, userID).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, internal.ErrUserNotFound
	}

	principal := &identity.Identity{
		UserID:           row.ID,
		Email:            row.Email,
		Role:             identity.Role(row.Role),
		AccountState:     identity.AccountState(row.AccountState),
		AssignedBranchID: row.AssignedBranchID,
	}

	if principal.Role == identity.RoleEmployee {
		matrix, err := identity.ParseMatrix(row.Permissions)
		if err != nil {
			return nil, err
		}
		principal.Permissions = matrix
	}

	if err := principal.Validate(); err != nil {
		return nil, err
	}
	return principal, nil
}
