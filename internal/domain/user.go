package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleDeveloper   = "Developer"
	RoleQA          = "QA"
	RoleScrumMaster = "Scrum Master"
)

func ValidRole(role string) bool {
	switch role {
	case RoleDeveloper, RoleQA, RoleScrumMaster:
		return true
	}
	return false
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"not null;column:name" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Role     string    `gorm:"not null;default:'Developer';column:role" json:"role"`
	IsAdmin  bool      `gorm:"not null;default:false;column:is_admin" json:"is_admin"`

	// Lifetime completed points, maintained by the points aggregator in the
	// same transaction that creates or deletes a registry entry.
	TotalPoints float64 `gorm:"not null;default:0;column:total_points" json:"total_points"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }
