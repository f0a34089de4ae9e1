package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlannedStory is one planned line of a sprint: how many stories of a given
// point value the team committed to.
type PlannedStory struct {
	PointValue float64 `json:"point_value"`
	Quantity   int     `json:"quantity"`
}

// UserPoints is the denormalized per-user completed total mirrored on the
// sprint. It is only ever mutated in the same transaction as
// Sprint.CompletedPoints.
type UserPoints struct {
	UserID uuid.UUID `json:"user_id"`
	Points float64   `json:"points"`
}

type Sprint struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	AdminID   uuid.UUID `gorm:"type:uuid;not null;index;column:admin_id" json:"admin_id"`
	StartDate time.Time `gorm:"not null;column:start_date" json:"start_date"`
	EndDate   time.Time `gorm:"not null;column:end_date" json:"end_date"`

	PlannedStories datatypes.JSON `gorm:"not null;default:'[]';column:planned_stories" json:"planned_stories"`
	// Always recomputed from PlannedStories, never hand-set.
	PlannedTotalPoints float64 `gorm:"not null;default:0;column:planned_total_points" json:"planned_total_points"`

	CompletedPoints float64        `gorm:"not null;default:0;column:completed_points" json:"completed_points"`
	UserPoints      datatypes.JSON `gorm:"not null;default:'[]';column:user_points" json:"user_points"`

	Status Status `gorm:"not null;default:'Planned';column:status" json:"status"`

	// Snapshot taken once, on the transition out of Active.
	FinalCompletionTotalPoints float64 `gorm:"not null;default:0;column:final_completion_total_points" json:"final_completion_total_points"`
	FinalObjectiveAchieved     bool    `gorm:"not null;default:false;column:final_objective_achieved" json:"final_objective_achieved"`

	Observations string `gorm:"column:observations" json:"observations,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Sprint) TableName() string { return "sprint" }

// PlannedTotal sums point_value x quantity over planned stories.
func PlannedTotal(stories []PlannedStory) float64 {
	var total float64
	for _, s := range stories {
		total += s.PointValue * float64(s.Quantity)
	}
	return total
}
