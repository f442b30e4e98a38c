package user

import "time"

type User struct {
	ID               int64      `gorm:"primaryKey"`
	Email            string     `gorm:"column:email;uniqueIndex;not null"`
	Name             string     `gorm:"column:name;not null"`
	PasswordHash     string     `gorm:"column:password_hash;not null"`
	Role             string     `gorm:"column:role;not null;default:guest"`
	AccountState     string     `gorm:"column:account_state;not null;default:pending"`
	AssignedBranchID *int64     `gorm:"column:assigned_branch_id"`
	// Permissions is the serialized matrix blob; deserialized once per
	// request when the Identity is built.
	Permissions      []byte     `gorm:"column:permissions;type:jsonb"`
	CreatedAt        time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}
