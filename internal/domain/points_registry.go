package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RegistryStory is one line of a points registry entry.
type RegistryStory struct {
	PointValue float64 `json:"point_value"`
	Count      int     `json:"count"`
	Subtotal   float64 `json:"subtotal"`
}

// PointsRegistryEntry records points a user completed in a sprint. Entries are
// only created while the owning sprint is Active; deleting one reverses its
// contribution from the sprint and user totals.
type PointsRegistryEntry struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_points_registry_user_sprint;column:user_id" json:"user_id"`
	SprintID uuid.UUID `gorm:"type:uuid;not null;index:idx_points_registry_user_sprint;index;column:sprint_id" json:"sprint_id"`

	Stories datatypes.JSON `gorm:"not null;default:'[]';column:stories" json:"stories"`
	// Always recomputed as the sum of story subtotals.
	TotalPoints float64 `gorm:"not null;default:0;column:total_points" json:"total_points"`

	IsInterruption bool      `gorm:"not null;default:false;column:is_interruption" json:"is_interruption"`
	RegisteredAt   time.Time `gorm:"not null;column:registered_at" json:"registered_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PointsRegistryEntry) TableName() string { return "points_registry" }

// RegistryTotal sums story subtotals.
func RegistryTotal(stories []RegistryStory) float64 {
	var total float64
	for _, s := range stories {
		total += s.Subtotal
	}
	return total
}
