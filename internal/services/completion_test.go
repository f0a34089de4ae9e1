package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/sprintflow/sprintflow-backend/internal/data/repos/testutil"
	"github.com/sprintflow/sprintflow-backend/internal/domain"
)

func TestSubmitCompletionUpserts(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)
	dev := testutil.SeedUser(t, env.db, domain.RoleDeveloper, false)
	sprint := testutil.SeedSprint(t, env.db, admin.ID, -5, 1, nil)
	ctx := authedCtx(dev)

	first, err := env.completion.Submit(ctx, SubmitCompletionInput{
		SprintID: sprint.ID,
		Stories: []CompletedStoryInput{
			{Score: 8, CompletedCount: 2},
			{Score: 2, CompletedCount: 1},
		},
		Notes: "first report",
	})
	if err != nil {
		t.Fatalf("submit completion: %v", err)
	}
	if first.TotalAchievedPoints != 18 {
		t.Fatalf("achieved total: want=18 got=%g", first.TotalAchievedPoints)
	}

	// Resubmission replaces the record instead of adding a second one.
	second, err := env.completion.Submit(ctx, SubmitCompletionInput{
		SprintID: sprint.ID,
		Stories:  []CompletedStoryInput{{Score: 5, CompletedCount: 1}},
		Notes:    "corrected report",
	})
	if err != nil {
		t.Fatalf("resubmit completion: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("resubmission must reuse the row: want id=%s got=%s", first.ID, second.ID)
	}
	if second.TotalAchievedPoints != 5 {
		t.Fatalf("achieved total after resubmit: want=5 got=%g", second.TotalAchievedPoints)
	}
	if second.Notes != "corrected report" {
		t.Fatalf("notes after resubmit: got %q", second.Notes)
	}

	records, err := env.completion.ListSprintCompletions(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records for (sprint, user): want=1 got=%d", len(records))
	}
}

func TestSubmitCompletionValidation(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)
	dev := testutil.SeedUser(t, env.db, domain.RoleDeveloper, false)
	sprint := testutil.SeedSprint(t, env.db, admin.ID, -5, 1, nil)
	ctx := authedCtx(dev)

	_, err := env.completion.Submit(ctx, SubmitCompletionInput{SprintID: sprint.ID})
	wantAPIError(t, err, "validation_error")

	_, err = env.completion.Submit(ctx, SubmitCompletionInput{
		SprintID: sprint.ID,
		Stories:  []CompletedStoryInput{{Score: 5, CompletedCount: 0}},
	})
	wantAPIError(t, err, "validation_error")

	_, err = env.completion.Submit(ctx, SubmitCompletionInput{
		SprintID: uuid.New(),
		Stories:  []CompletedStoryInput{{Score: 5, CompletedCount: 1}},
	})
	wantAPIError(t, err, "not_found")
}

func TestSprintContributionsMergesSources(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)
	legacyUser := testutil.SeedUser(t, env.db, domain.RoleDeveloper, false)
	registryUser := testutil.SeedUser(t, env.db, domain.RoleQA, false)
	sprint := testutil.SeedSprint(t, env.db, admin.ID, -5, 1, nil)

	testutil.SeedCompletion(t, env.db, sprint.ID, legacyUser.ID, []domain.CompletedStory{{Score: 10, CompletedCount: 2}}, "")
	// The same user also has registry entries; legacy must win.
	testutil.SeedRegistryEntry(t, env.db, legacyUser.ID, sprint.ID, []domain.RegistryStory{{PointValue: 5, Count: 1, Subtotal: 5}})
	testutil.SeedRegistryEntry(t, env.db, registryUser.ID, sprint.ID, []domain.RegistryStory{{PointValue: 3, Count: 1, Subtotal: 3}})
	testutil.SeedRegistryEntry(t, env.db, registryUser.ID, sprint.ID, []domain.RegistryStory{{PointValue: 2, Count: 1, Subtotal: 2}})

	contributions, err := env.completion.SprintContributions(authedCtx(admin), sprint.ID)
	if err != nil {
		t.Fatalf("sprint contributions: %v", err)
	}
	if len(contributions) != 2 {
		t.Fatalf("contributions: want=2 got=%d", len(contributions))
	}

	legacy := findContribution(t, contributions, legacyUser.ID)
	if legacy.Source != SourceLegacy || legacy.TotalPoints != 20 {
		t.Fatalf("legacy user: want legacy/20 got %s/%g", legacy.Source, legacy.TotalPoints)
	}
	reg := findContribution(t, contributions, registryUser.ID)
	if reg.Source != SourceRegistry || reg.TotalPoints != 5 {
		t.Fatalf("registry user: want registry/5 got %s/%g", reg.Source, reg.TotalPoints)
	}
}

func TestDeleteCompletionOwnership(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)
	dev := testutil.SeedUser(t, env.db, domain.RoleDeveloper, false)
	other := testutil.SeedUser(t, env.db, domain.RoleQA, false)
	sprint := testutil.SeedSprint(t, env.db, admin.ID, -5, 1, nil)

	rec := testutil.SeedCompletion(t, env.db, sprint.ID, dev.ID, []domain.CompletedStory{{Score: 5, CompletedCount: 1}}, "")

	wantAPIError(t, env.completion.Delete(authedCtx(other), rec.ID), "forbidden")
	if err := env.completion.Delete(authedCtx(dev), rec.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	wantAPIError(t, env.completion.Delete(authedCtx(dev), rec.ID), "not_found")

	if _, err := env.completion.GetUserCompletion(authedCtx(dev), sprint.ID, dev.ID); err == nil {
		t.Fatalf("expected not_found after delete")
	}
}
