package company

import "time"

type Company struct {
	ID             int64      `gorm:"primaryKey"`
	Name           string     `gorm:"column:name;not null"`
	NormalizedName string     `gorm:"column:normalized_name;uniqueIndex;not null"`
	Description    string     `gorm:"column:description"`
	OwnerID        int64      `gorm:"column:owner_id;not null;index"`
	LogoRef        *string    `gorm:"column:logo_ref"`
	Status         string     `gorm:"column:status;not null;default:active"`
	ArchivedAt     *time.Time `gorm:"column:archived_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Company) TableName() string {
	return "companies"
}
