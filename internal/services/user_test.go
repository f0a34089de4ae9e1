package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/sprintflow/sprintflow-backend/internal/data/repos/testutil"
	"github.com/sprintflow/sprintflow-backend/internal/domain"
)

func TestGetMe(t *testing.T) {
	env := newTestEnv(t)
	dev := testutil.SeedUser(t, env.db, domain.RoleDeveloper, false)

	me, err := env.user.GetMe(authedCtx(dev))
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	if me.ID != dev.ID {
		t.Fatalf("get me: want=%s got=%s", dev.ID, me.ID)
	}
}

func TestUpdateRole(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)
	dev := testutil.SeedUser(t, env.db, domain.RoleDeveloper, false)

	updated, err := env.user.UpdateRole(authedCtx(admin), dev.ID, domain.RoleQA, false)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if updated.Role != domain.RoleQA {
		t.Fatalf("role: want=%s got=%s", domain.RoleQA, updated.Role)
	}

	_, err = env.user.UpdateRole(authedCtx(dev), admin.ID, domain.RoleDeveloper, false)
	wantAPIError(t, err, "forbidden")

	_, err = env.user.UpdateRole(authedCtx(admin), dev.ID, "Architect", false)
	wantAPIError(t, err, "validation_error")

	_, err = env.user.UpdateRole(authedCtx(admin), uuid.New(), domain.RoleQA, false)
	wantAPIError(t, err, "not_found")
}

func TestDeleteUserGuards(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)
	dev := testutil.SeedUser(t, env.db, domain.RoleDeveloper, false)

	wantAPIError(t, env.user.Delete(authedCtx(dev), admin.ID), "forbidden")
	wantAPIError(t, env.user.Delete(authedCtx(admin), admin.ID), "invalid_state")

	if err := env.user.Delete(authedCtx(admin), dev.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	_, err := env.user.Get(authedCtx(admin), dev.ID)
	wantAPIError(t, err, "not_found")
}

func TestLeaderboardOrder(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, domain.RoleScrumMaster, true)
	low := testutil.SeedUser(t, env.db, domain.RoleDeveloper, false)
	high := testutil.SeedUser(t, env.db, domain.RoleQA, false)

	sprint := testutil.SeedSprint(t, env.db, admin.ID, -1, 1, nil)
	if _, err := env.points.RecordPoints(authedCtx(low), RecordPointsInput{
		SprintID: sprint.ID,
		Stories:  []RegistryStoryInput{{PointValue: 3, Count: 1}},
	}); err != nil {
		t.Fatalf("record low: %v", err)
	}
	if _, err := env.points.RecordPoints(authedCtx(high), RecordPointsInput{
		SprintID: sprint.ID,
		Stories:  []RegistryStoryInput{{PointValue: 21, Count: 1}},
	}); err != nil {
		t.Fatalf("record high: %v", err)
	}

	users, err := env.user.Leaderboard(authedCtx(admin))
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	posHigh, posLow := -1, -1
	for i, u := range users {
		switch u.ID {
		case high.ID:
			posHigh = i
		case low.ID:
			posLow = i
		}
	}
	if posHigh == -1 || posLow == -1 {
		t.Fatalf("leaderboard missing seeded users")
	}
	if posHigh > posLow {
		t.Fatalf("leaderboard order: user with %g points ranked below user with %g", 21.0, 3.0)
	}
}
