package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	internal "github.com/frahmantamala/company-management/internal"
	userDatamodel "github.com/frahmantamala/company-management/internal/core/datamodel/user"
	"github.com/frahmantamala/company-management/internal/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	var model userDatamodel.User
	err := r.db.WithContext(ctx).First(&model, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}
	return user.FromDataModel(&model)
}

func (r *Repository) Update(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now()
	model, err := user.ToDataModel(u)
	if err != nil {
		return internal.NewInternalError("failed to serialize user", err)
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return internal.NewInternalError("failed to update user", err)
	}
	return nil
}
