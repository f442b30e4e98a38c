package company

import (
	"strings"
	"time"

	companyDatamodel "github.com/frahmantamala/company-management/internal/core/datamodel/company"
)

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

const (
	// MaxCompaniesPerOwner is a soft ceiling: the pre-count is not part of
	// the create transaction, so concurrent creates can slightly exceed it.
	MaxCompaniesPerOwner = 10

	MaxNameLength        = 255
	MaxDescriptionLength = 1000
)

type Company struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	NormalizedName string     `json:"-"`
	Description    string     `json:"description,omitempty"`
	OwnerID        int64      `json:"owner_id"`
	LogoRef        *string    `json:"logo_ref,omitempty"`
	Status         string     `json:"status"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NormalizeName is the single normalization used both for uniqueness
// arbitration and availability hints: trim, collapse inner whitespace,
// lowercase. Display casing is preserved separately on Name.
func NormalizeName(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// DisplayName trims and collapses whitespace but keeps the original casing.
func DisplayName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

func (c *Company) IsArchived() bool {
	return c.Status == StatusArchived
}

func (c *Company) Archive(now time.Time) {
	c.Status = StatusArchived
	c.ArchivedAt = &now
}

func (c *Company) Reactivate() {
	c.Status = StatusActive
	c.ArchivedAt = nil
}

func NewCompany(ownerID int64, dto CreateCompanyDTO) *Company {
	now := time.Now()
	return &Company{
		Name:           DisplayName(dto.Name),
		NormalizedName: NormalizeName(dto.Name),
		Description:    strings.TrimSpace(dto.Description),
		OwnerID:        ownerID,
		Status:         StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func ToDataModel(c *Company) *companyDatamodel.Company {
	return &companyDatamodel.Company{
		ID:             c.ID,
		Name:           c.Name,
		NormalizedName: c.NormalizedName,
		Description:    c.Description,
		OwnerID:        c.OwnerID,
		LogoRef:        c.LogoRef,
		Status:         c.Status,
		ArchivedAt:     c.ArchivedAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func FromDataModel(m *companyDatamodel.Company) *Company {
	return &Company{
		ID:             m.ID,
		Name:           m.Name,
		NormalizedName: m.NormalizedName,
		Description:    m.Description,
		OwnerID:        m.OwnerID,
		LogoRef:        m.LogoRef,
		Status:         m.Status,
		ArchivedAt:     m.ArchivedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func FromDataModelSlice(models []*companyDatamodel.Company) []*Company {
	result := make([]*Company, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}
