package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sprintflow/sprintflow-backend/internal/data/repos/testutil"
	"github.com/sprintflow/sprintflow-backend/internal/domain"
)

func TestCreateSprintDerivesStatusAndTotals(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)
	today := time.Now().UTC()

	s, err := env.sprint.Create(authedCtx(admin), CreateSprintInput{
		Name:      "iteration 12",
		StartDate: today.AddDate(0, 0, -1),
		EndDate:   today.AddDate(0, 0, 5),
		PlannedStories: []domain.PlannedStory{
			{PointValue: 8, Quantity: 2},
			{PointValue: 0.5, Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("create sprint: %v", err)
	}
	if s.Status != domain.StatusActive {
		t.Fatalf("status: want=%s got=%s", domain.StatusActive, s.Status)
	}
	// 8*2 + 0.5*4; the planned total is always recomputed server-side.
	if s.PlannedTotalPoints != 18 {
		t.Fatalf("planned total: want=18 got=%g", s.PlannedTotalPoints)
	}
	if s.AdminID != admin.ID {
		t.Fatalf("admin id: want=%s got=%s", admin.ID, s.AdminID)
	}
}

func TestCreateSprintAuthorization(t *testing.T) {
	env := newTestEnv(t)
	dev := testutil.SeedUser(t, env.db, domain.RoleDeveloper, false)
	today := time.Now().UTC()

	_, err := env.sprint.Create(authedCtx(dev), CreateSprintInput{
		Name:      "nope",
		StartDate: today,
		EndDate:   today.AddDate(0, 0, 7),
	})
	wantAPIError(t, err, "forbidden")
}

func TestCreateSprintValidation(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)
	ctx := authedCtx(admin)
	today := time.Now().UTC()

	_, err := env.sprint.Create(ctx, CreateSprintInput{
		Name:      "backwards window",
		StartDate: today.AddDate(0, 0, 5),
		EndDate:   today,
	})
	wantAPIError(t, err, "validation_error")

	_, err = env.sprint.Create(ctx, CreateSprintInput{
		Name:           "off-scale story",
		StartDate:      today,
		EndDate:        today.AddDate(0, 0, 7),
		PlannedStories: []domain.PlannedStory{{PointValue: 7, Quantity: 1}},
	})
	wantAPIError(t, err, "validation_error")
}

func TestUpdateSprintRecomputesPlannedTotal(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)
	sprint := testutil.SeedSprint(t, env.db, admin.ID, -1, 5, []domain.PlannedStory{{PointValue: 5, Quantity: 2}})

	updated, err := env.sprint.Update(authedCtx(admin), sprint.ID, UpdateSprintInput{
		PlannedStories: []domain.PlannedStory{{PointValue: 13, Quantity: 1}, {PointValue: 1, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("update sprint: %v", err)
	}
	if updated.PlannedTotalPoints != 15 {
		t.Fatalf("planned total after update: want=15 got=%g", updated.PlannedTotalPoints)
	}
}

func TestUpdateSprintRejectsTerminal(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)
	// Window entirely in the past: seeding derives a terminal status.
	sprint := testutil.SeedSprint(t, env.db, admin.ID, -10, -3, []domain.PlannedStory{{PointValue: 5, Quantity: 2}})
	if !sprint.Status.Terminal() {
		t.Fatalf("fixture sprint should be terminal, got %s", sprint.Status)
	}

	name := "rewrite history"
	_, err := env.sprint.Update(authedCtx(admin), sprint.ID, UpdateSprintInput{Name: &name})
	wantAPIError(t, err, "invalid_state")
}

func TestSynchronizeStatusesTransitions(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)

	// Force a stale stored status: dates say finished, the row says Active.
	sprint := testutil.SeedSprint(t, env.db, admin.ID, -10, -3, []domain.PlannedStory{{PointValue: 5, Quantity: 5}})
	sprint.Status = domain.StatusActive
	sprint.CompletedPoints = 20 // 20/25 = 0.8, exactly at the threshold
	if err := env.db.Save(sprint).Error; err != nil {
		t.Fatalf("reset fixture status: %v", err)
	}

	changed, err := env.sprint.SynchronizeStatuses(authedCtx(admin), []uuid.UUID{sprint.ID})
	if err != nil {
		t.Fatalf("synchronize: %v", err)
	}
	if changed != 1 {
		t.Fatalf("changed: want=1 got=%d", changed)
	}

	s := env.reloadSprint(t, sprint.ID)
	if s.Status != domain.StatusCompletedSuccess {
		t.Fatalf("status: want=%s got=%s", domain.StatusCompletedSuccess, s.Status)
	}
	if s.FinalCompletionTotalPoints != 20 {
		t.Fatalf("final total snapshot: want=20 got=%g", s.FinalCompletionTotalPoints)
	}
	if !s.FinalObjectiveAchieved {
		t.Fatalf("final objective achieved: want=true")
	}

	// Idempotent: a second pass finds nothing to do.
	changed, err = env.sprint.SynchronizeStatuses(authedCtx(admin), []uuid.UUID{sprint.ID})
	if err != nil {
		t.Fatalf("second synchronize: %v", err)
	}
	if changed != 0 {
		t.Fatalf("second pass changed: want=0 got=%d", changed)
	}
}

func TestSynchronizeNeverMovesStatusBackward(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)

	sprint := testutil.SeedSprint(t, env.db, admin.ID, -1, 1, nil)
	if sprint.Status != domain.StatusActive {
		t.Fatalf("fixture sprint status: want=%s got=%s", domain.StatusActive, sprint.Status)
	}

	// Reschedule the whole window into the future; the dates alone would now
	// derive Planned.
	start := domain.Midnight(time.Now().UTC().AddDate(0, 0, 7))
	end := start.AddDate(0, 0, 7)
	updated, err := env.sprint.Update(authedCtx(admin), sprint.ID, UpdateSprintInput{
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		t.Fatalf("update sprint: %v", err)
	}
	if updated.Status != domain.StatusActive {
		t.Fatalf("update demoted status: want=%s got=%s", domain.StatusActive, updated.Status)
	}

	changed, err := env.sprint.SynchronizeStatuses(authedCtx(admin), []uuid.UUID{sprint.ID})
	if err != nil {
		t.Fatalf("synchronize: %v", err)
	}
	if changed != 0 {
		t.Fatalf("synchronizer demoted a sprint: changed want=0 got=%d", changed)
	}
	if s := env.reloadSprint(t, sprint.ID); s.Status != domain.StatusActive {
		t.Fatalf("status moved backward: want=%s got=%s", domain.StatusActive, s.Status)
	}
}

func TestSynchronizeNeverReclassifiesTerminal(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)

	sprint := testutil.SeedSprint(t, env.db, admin.ID, -10, -3, []domain.PlannedStory{{PointValue: 5, Quantity: 5}})
	sprint.Status = domain.StatusActive
	sprint.CompletedPoints = 5 // 5/25, well below the threshold
	if err := env.db.Save(sprint).Error; err != nil {
		t.Fatalf("reset fixture status: %v", err)
	}

	if _, err := env.sprint.SynchronizeStatuses(authedCtx(admin), []uuid.UUID{sprint.ID}); err != nil {
		t.Fatalf("synchronize: %v", err)
	}
	s := env.reloadSprint(t, sprint.ID)
	if s.Status != domain.StatusCompletedPartial {
		t.Fatalf("status: want=%s got=%s", domain.StatusCompletedPartial, s.Status)
	}

	// Totals moving after completion must not flip the outcome.
	s.CompletedPoints = 25
	if err := env.db.Save(s).Error; err != nil {
		t.Fatalf("bump totals: %v", err)
	}
	if _, err := env.sprint.SynchronizeStatuses(authedCtx(admin), []uuid.UUID{sprint.ID}); err != nil {
		t.Fatalf("resynchronize: %v", err)
	}
	s = env.reloadSprint(t, sprint.ID)
	if s.Status != domain.StatusCompletedPartial {
		t.Fatalf("terminal status re-evaluated: want=%s got=%s", domain.StatusCompletedPartial, s.Status)
	}
	if s.FinalCompletionTotalPoints != 5 {
		t.Fatalf("final snapshot must be immutable: want=5 got=%g", s.FinalCompletionTotalPoints)
	}
}

func TestSprintLifecycleBoundaries(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)

	// Inclusive boundaries: a sprint ending today is still Active.
	endingToday := testutil.SeedSprint(t, env.db, admin.ID, -5, 0, nil)
	if endingToday.Status != domain.StatusActive {
		t.Fatalf("sprint ending today: want=%s got=%s", domain.StatusActive, endingToday.Status)
	}
	startingToday := testutil.SeedSprint(t, env.db, admin.ID, 0, 5, nil)
	if startingToday.Status != domain.StatusActive {
		t.Fatalf("sprint starting today: want=%s got=%s", domain.StatusActive, startingToday.Status)
	}
	future := testutil.SeedSprint(t, env.db, admin.ID, 1, 6, nil)
	if future.Status != domain.StatusPlanned {
		t.Fatalf("future sprint: want=%s got=%s", domain.StatusPlanned, future.Status)
	}
}
