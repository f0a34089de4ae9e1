package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CompletedStory is one line of a legacy completion record.
type CompletedStory struct {
	Score          float64 `json:"score"`
	CompletedCount int     `json:"completed_count"`
}

// CompletionRecord is the legacy "foto finish" completion report: at most one
// per (sprint, user), upserted on resubmission. New completed work goes
// through the points registry; this record type survives for sprints reported
// before the registry existed and for the legacy submit endpoint.
type CompletionRecord struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SprintID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completion_sprint_user;column:sprint_id" json:"sprint_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completion_sprint_user;column:user_id" json:"user_id"`

	CompletedStories datatypes.JSON `gorm:"not null;default:'[]';column:completed_stories" json:"completed_stories"`
	// Derived: sum of score x completed_count.
	TotalAchievedPoints float64 `gorm:"not null;default:0;column:total_achieved_points" json:"total_achieved_points"`

	Notes       string    `gorm:"column:notes" json:"notes,omitempty"`
	SubmittedAt time.Time `gorm:"not null;column:submitted_at" json:"submitted_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CompletionRecord) TableName() string { return "completion" }

// AchievedTotal sums score x completed_count over completed stories.
func AchievedTotal(stories []CompletedStory) float64 {
	var total float64
	for _, s := range stories {
		total += s.Score * float64(s.CompletedCount)
	}
	return total
}
