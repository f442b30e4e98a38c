package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	internal "github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/branch"
	branchDatamodel "github.com/frahmantamala/company-management/internal/core/datamodel/branch"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, b *branch.Branch) error {
	model := branch.ToDataModel(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return internal.NewInternalError("failed to create branch", err)
	}
	*b = *branch.FromDataModel(model)
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*branch.Branch, error) {
	var model branchDatamodel.Branch
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBranchNotFound
		}
		return nil, internal.NewInternalError("failed to load branch", err)
	}
	return branch.FromDataModel(&model), nil
}

func (r *Repository) GetByCompany(ctx context.Context, companyID int64) ([]*branch.Branch, error) {
	var models []*branchDatamodel.Branch
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, internal.NewInternalError("failed to list branches", err)
	}
	return branch.FromDataModelSlice(models), nil
}

func (r *Repository) Update(ctx context.Context, b *branch.Branch) error {
	model := branch.ToDataModel(b)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return internal.NewInternalError("failed to update branch", err)
	}
	return nil
}
