package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	internal "github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/company"
	branchDatamodel "github.com/frahmantamala/company-management/internal/core/datamodel/branch"
	companyDatamodel "github.com/frahmantamala/company-management/internal/core/datamodel/company"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, c *company.Company) error {
	model := company.ToDataModel(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	*c = *company.FromDataModel(model)
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*company.Company, error) {
	var model companyDatamodel.Company
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCompanyNotFound
		}
		return nil, translateError(err)
	}
	return company.FromDataModel(&model), nil
}

func (r *Repository) GetByOwner(ctx context.Context, ownerID int64) ([]*company.Company, error) {
	var models []*companyDatamodel.Company
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, translateError(err)
	}
	return company.FromDataModelSlice(models), nil
}

func (r *Repository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&companyDatamodel.Company{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	if err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (r *Repository) NormalizedNameExists(ctx context.Context, normalizedName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&companyDatamodel.Company{}).
		Where("normalized_name = ?", normalizedName).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

func (r *Repository) Mutate(ctx context.Context, id int64, fn func(c *company.Company) (bool, error)) (*company.Company, error) {
	var result *company.Company

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model, err := r.lockByID(tx, id)
		if err != nil {
			return err
		}

		c := company.FromDataModel(model)
		changed, err := fn(c)
		if err != nil {
			return err
		}
		if !changed {
			result = c
			return nil
		}

		c.UpdatedAt = time.Now()
		updated := company.ToDataModel(c)
		if err := tx.Save(updated).Error; err != nil {
			return translateError(err)
		}
		result = company.FromDataModel(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Repository) Remove(ctx context.Context, id int64, fn func(c *company.Company) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model, err := r.lockByID(tx, id)
		if err != nil {
			return err
		}
		if err := fn(company.FromDataModel(model)); err != nil {
			return err
		}
		// Dependent branches are removed in the same transaction. The
		// schema FK also cascades on Postgres.
		if err := tx.Delete(&branchDatamodel.Branch{}, "company_id = ?", id).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Delete(&companyDatamodel.Company{}, "id = ?", id).Error; err != nil {
			return translateError(err)
		}
		return nil
	})
}

// lockByID reads the row FOR UPDATE so concurrent mutators serialize on it.
// The sqlite dialect used in tests has no row locks; there the plain read
// is enough since the test database is single-connection.
func (r *Repository) lockByID(tx *gorm.DB, id int64) (*companyDatamodel.Company, error) {
	query := tx
	if tx.Dialector.Name() == "postgres" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model companyDatamodel.Company
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCompanyNotFound
		}
		return nil, translateError(err)
	}
	return &model, nil
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrCompanyNameUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return internal.ErrCompanyNameUnavailable
		case "40001", "40P01", "55P03":
			return internal.NewTransientError("storage conflict, retry the operation", err)
		}
	}

	// sqlite in tests reports unique violations as plain text.
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return internal.ErrCompanyNameUnavailable
	}

	return internal.NewInternalError("storage operation failed", err)
}
