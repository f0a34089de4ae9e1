package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sprintflow/sprintflow-backend/internal/domain"
)

// SeedUser inserts a user with a unique email and returns it.
func SeedUser(t *testing.T, tx *gorm.DB, role string, isAdmin bool) *domain.User {
	t.Helper()
	id := uuid.New()
	u := &domain.User{
		ID:       id,
		Name:     "user-" + id.String()[:8],
		Email:    id.String() + "@example.com",
		Password: "x",
		Role:     role,
		IsAdmin:  isAdmin,
	}
	if err := tx.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedSprint inserts a sprint whose window is expressed relative to now.
// startOffset and endOffset are day offsets from today; negative means past.
func SeedSprint(t *testing.T, tx *gorm.DB, adminID uuid.UUID, startOffset, endOffset int, stories []domain.PlannedStory) *domain.Sprint {
	t.Helper()
	today := domain.Midnight(time.Now().UTC())
	s := &domain.Sprint{
		ID:                 uuid.New(),
		Name:               "sprint-fixture",
		AdminID:            adminID,
		StartDate:          today.AddDate(0, 0, startOffset),
		EndDate:            today.AddDate(0, 0, endOffset),
		PlannedStories:     domain.EncodePlannedStories(stories),
		PlannedTotalPoints: domain.PlannedTotal(stories),
		UserPoints:         domain.EncodeUserPoints(nil),
	}
	s.Status = domain.ComputeStatus(s, today)
	if err := tx.Create(s).Error; err != nil {
		t.Fatalf("seed sprint: %v", err)
	}
	return s
}

// SeedRegistryEntry inserts a registry entry with totals derived from stories.
func SeedRegistryEntry(t *testing.T, tx *gorm.DB, userID, sprintID uuid.UUID, stories []domain.RegistryStory) *domain.PointsRegistryEntry {
	t.Helper()
	e := &domain.PointsRegistryEntry{
		ID:           uuid.New(),
		UserID:       userID,
		SprintID:     sprintID,
		Stories:      domain.EncodeRegistryStories(stories),
		TotalPoints:  domain.RegistryTotal(stories),
		RegisteredAt: time.Now().UTC(),
	}
	if err := tx.Create(e).Error; err != nil {
		t.Fatalf("seed registry entry: %v", err)
	}
	return e
}

// SeedCompletion inserts a legacy completion record.
func SeedCompletion(t *testing.T, tx *gorm.DB, sprintID, userID uuid.UUID, stories []domain.CompletedStory, notes string) *domain.CompletionRecord {
	t.Helper()
	c := &domain.CompletionRecord{
		ID:                  uuid.New(),
		SprintID:            sprintID,
		UserID:              userID,
		CompletedStories:    domain.EncodeCompletedStories(stories),
		TotalAchievedPoints: domain.AchievedTotal(stories),
		Notes:               notes,
		SubmittedAt:         time.Now().UTC(),
	}
	if err := tx.Create(c).Error; err != nil {
		t.Fatalf("seed completion: %v", err)
	}
	return c
}
