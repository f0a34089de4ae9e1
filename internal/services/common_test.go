package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sprintflow/sprintflow-backend/internal/data/repos"
	"github.com/sprintflow/sprintflow-backend/internal/data/repos/testutil"
	"github.com/sprintflow/sprintflow-backend/internal/domain"
	"github.com/sprintflow/sprintflow-backend/internal/platform/apierr"
	"github.com/sprintflow/sprintflow-backend/internal/realtime/bus"
	"github.com/sprintflow/sprintflow-backend/internal/requestdata"
)

type testEnv struct {
	db         *gorm.DB
	repos      repos.Set
	auth       AuthService
	user       UserService
	sprint     SprintService
	points     PointsService
	completion CompletionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	reposet := repos.NewSet(db, log)
	notifier := NewNotifier(log, bus.NewLocalBus())

	sprintService := NewSprintService(db, log, reposet.Sprint, notifier)
	return &testEnv{
		db:         db,
		repos:      reposet,
		auth:       NewAuthService(db, log, reposet.User, reposet.UserToken, "test-secret", time.Hour, 24*time.Hour, "boss@example.com"),
		user:       NewUserService(db, log, reposet.User, reposet.UserToken),
		sprint:     sprintService,
		points:     NewPointsService(db, log, reposet.Sprint, reposet.PointsRegistry, reposet.User, sprintService, notifier),
		completion: NewCompletionService(db, log, reposet.Sprint, reposet.Completion, reposet.PointsRegistry, notifier),
	}
}

func authedCtx(u *domain.User) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:  u.ID,
		Role:    u.Role,
		IsAdmin: u.IsAdmin,
	})
}

func wantAPIError(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %q error, got nil", code)
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected apierr with code %q, got %v", code, err)
	}
	if ae.Code != code {
		t.Fatalf("error code: want=%q got=%q (%v)", code, ae.Code, err)
	}
}
