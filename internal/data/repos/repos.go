package repos

import (
	"gorm.io/gorm"

	"github.com/sprintflow/sprintflow-backend/internal/data/repos/auth"
	"github.com/sprintflow/sprintflow-backend/internal/data/repos/completion"
	"github.com/sprintflow/sprintflow-backend/internal/data/repos/points"
	"github.com/sprintflow/sprintflow-backend/internal/data/repos/sprint"
	"github.com/sprintflow/sprintflow-backend/internal/data/repos/user"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo
type SprintRepo = sprint.SprintRepo
type PointsRegistryRepo = points.PointsRegistryRepo
type CompletionRepo = completion.CompletionRepo

// Set bundles every repository for dependency wiring.
type Set struct {
	User           UserRepo
	UserToken      UserTokenRepo
	Sprint         SprintRepo
	PointsRegistry PointsRegistryRepo
	Completion     CompletionRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		User:           user.NewUserRepo(db, log),
		UserToken:      auth.NewUserTokenRepo(db, log),
		Sprint:         sprint.NewSprintRepo(db, log),
		PointsRegistry: points.NewPointsRegistryRepo(db, log),
		Completion:     completion.NewCompletionRepo(db, log),
	}
}
