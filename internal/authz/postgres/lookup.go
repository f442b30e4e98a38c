package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/authz"
)

// Lookup implements authz.ResourceLookup with raw projection reads. These
// queries run outside any transaction and never take locks.
type Lookup struct {
	db *gorm.DB
}

func NewLookup(db *gorm.DB) *Lookup {
	return &Lookup{db: db}
}

func (l *Lookup) FetchCompanyProjection(ctx context.Context, companyID int64) (*authz.CompanyProjection, error) {
	var p authz.CompanyProjection
	query := `SELECT id, owner_id, status = 'active' AS active FROM companies WHERE id = ?`

	row := l.db.WithContext(ctx).Raw(query, companyID).Row()
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrCompanyNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (l *Lookup) FetchBranchProjection(ctx context.Context, branchID int64) (*authz.BranchProjection, error) {
	var p authz.BranchProjection
	query := `SELECT id, company_id, active FROM branches WHERE id = ?`

	row := l.db.WithContext(ctx).Raw(query, branchID).Row()
	if err := row.Scan(&p.ID, &p.CompanyID, &p.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrBranchNotFound
		}
		return nil, err
	}
	return &p, nil
}
