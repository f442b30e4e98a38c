package branch

import (
	"strings"
	"time"

	internal "github.com/frahmantamala/company-management/internal"
	branchDatamodel "github.com/frahmantamala/company-management/internal/core/datamodel/branch"
	"github.com/frahmantamala/company-management/internal/core/common/validation"
)

const MaxNameLength = 255

type Branch struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Info is the branch view served to employees through the full gate chain.
type Info struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
}

type CreateBranchDTO struct {
	Name string `json:"name"`
}

func (dto CreateBranchDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(MaxNameLength)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func NewBranch(companyID int64, dto CreateBranchDTO) *Branch {
	now := time.Now()
	return &Branch{
		CompanyID: companyID,
		Name:      strings.TrimSpace(dto.Name),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b *Branch) Deactivate() error {
	if !b.Active {
		return internal.NewInvalidStateError("branch is already inactive", internal.ErrCodeBranchInactive)
	}
	b.Active = false
	return nil
}

func (b *Branch) Info() Info {
	return Info{
		ID:        b.ID,
		CompanyID: b.CompanyID,
		Name:      b.Name,
		Active:    b.Active,
	}
}

func ToDataModel(b *Branch) *branchDatamodel.Branch {
	return &branchDatamodel.Branch{
		ID:        b.ID,
		CompanyID: b.CompanyID,
		Name:      b.Name,
		Active:    b.Active,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func FromDataModel(m *branchDatamodel.Branch) *Branch {
	return &Branch{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Name:      m.Name,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func FromDataModelSlice(models []*branchDatamodel.Branch) []*Branch {
	result := make([]*Branch, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}
