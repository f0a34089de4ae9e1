package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/sprintflow/sprintflow-backend/internal/domain"
)

func registryEntry(userID uuid.UUID, total float64) *domain.PointsRegistryEntry {
	return &domain.PointsRegistryEntry{
		ID:          uuid.New(),
		UserID:      userID,
		SprintID:    uuid.New(),
		TotalPoints: total,
	}
}

func legacyRecord(userID uuid.UUID, total float64) *domain.CompletionRecord {
	return &domain.CompletionRecord{
		ID:                  uuid.New(),
		UserID:              userID,
		SprintID:            uuid.New(),
		TotalAchievedPoints: total,
	}
}

func findContribution(t *testing.T, contributions []Contribution, userID uuid.UUID) Contribution {
	t.Helper()
	for _, c := range contributions {
		if c.UserID == userID {
			return c
		}
	}
	t.Fatalf("no contribution for user %s", userID)
	return Contribution{}
}

func TestMergeContributionsLegacyWins(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()

	records := []*domain.CompletionRecord{legacyRecord(userA, 20)}
	entries := []*domain.PointsRegistryEntry{
		registryEntry(userA, 5),
		registryEntry(userB, 5),
	}

	got := mergeContributions(records, entries)
	if len(got) != 2 {
		t.Fatalf("contributions: want=2 got=%d", len(got))
	}

	a := findContribution(t, got, userA)
	if a.Source != SourceLegacy {
		t.Fatalf("user A source: want=%s got=%s", SourceLegacy, a.Source)
	}
	if a.TotalPoints != 20 {
		t.Fatalf("user A total: the legacy record must replace registry entries, want=20 got=%g", a.TotalPoints)
	}

	b := findContribution(t, got, userB)
	if b.Source != SourceRegistry {
		t.Fatalf("user B source: want=%s got=%s", SourceRegistry, b.Source)
	}
	if b.TotalPoints != 5 {
		t.Fatalf("user B total: want=5 got=%g", b.TotalPoints)
	}
}

func TestMergeContributionsCollapsesRegistryEntries(t *testing.T) {
	userA := uuid.New()
	entries := []*domain.PointsRegistryEntry{
		registryEntry(userA, 3),
		registryEntry(userA, 2),
		registryEntry(userA, 8),
	}

	got := mergeContributions(nil, entries)
	if len(got) != 1 {
		t.Fatalf("contributions: want=1 got=%d", len(got))
	}
	if got[0].TotalPoints != 13 {
		t.Fatalf("collapsed total: want=13 got=%g", got[0].TotalPoints)
	}
	if got[0].Entries != 3 {
		t.Fatalf("entry count: want=3 got=%d", got[0].Entries)
	}
}

func TestMergeContributionsAtMostOnePerUser(t *testing.T) {
	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	var records []*domain.CompletionRecord
	var entries []*domain.PointsRegistryEntry
	for _, u := range users {
		records = append(records, legacyRecord(u, 10))
		entries = append(entries, registryEntry(u, 1), registryEntry(u, 2))
	}

	got := mergeContributions(records, entries)
	if len(got) != len(users) {
		t.Fatalf("contributions: want=%d got=%d", len(users), len(got))
	}
	seen := make(map[uuid.UUID]bool)
	for _, c := range got {
		if seen[c.UserID] {
			t.Fatalf("user %s appears more than once", c.UserID)
		}
		seen[c.UserID] = true
		if c.TotalPoints != 10 {
			t.Fatalf("user %s total: want=10 got=%g", c.UserID, c.TotalPoints)
		}
	}
}

func TestMergeContributionsEmptyInputs(t *testing.T) {
	if got := mergeContributions(nil, nil); len(got) != 0 {
		t.Fatalf("empty merge: want no contributions, got=%d", len(got))
	}
}
