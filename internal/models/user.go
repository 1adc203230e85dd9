package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an organization member. Credentials live with the authentication
// service; this table only resolves national ids to user ids.
type User struct {
	ID             string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	OrganizationID string    `json:"organization_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_users_org_national,priority:1"`
	NationalID     string    `json:"national_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_users_org_national,priority:2"`
	Name           string    `json:"name" gorm:"size:255"`
	Role           string    `json:"role" gorm:"type:varchar(16);not null;default:user"` // user or admin
	CreatedAt      time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
