package app

import (
	"gorm.io/gorm"

	"github.com/sprintflow/sprintflow-backend/internal/data/repos"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
	"github.com/sprintflow/sprintflow-backend/internal/realtime/bus"
	"github.com/sprintflow/sprintflow-backend/internal/services"
)

type Services struct {
	Notifier   services.Notifier
	Auth       services.AuthService
	User       services.UserService
	Sprint     services.SprintService
	Points     services.PointsService
	Completion services.CompletionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet repos.Set, b bus.Bus) Services {
	log.Info("Wiring services...")
	notifier := services.NewNotifier(log, b)
	sprintService := services.NewSprintService(db, log, reposet.Sprint, notifier)
	return Services{
		Notifier: notifier,
		Auth: services.NewAuthService(
			db, log,
			reposet.User, reposet.UserToken,
			cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
			cfg.AdminEmail,
		),
		User:       services.NewUserService(db, log, reposet.User, reposet.UserToken),
		Sprint:     sprintService,
		Points:     services.NewPointsService(db, log, reposet.Sprint, reposet.PointsRegistry, reposet.User, sprintService, notifier),
		Completion: services.NewCompletionService(db, log, reposet.Sprint, reposet.Completion, reposet.PointsRegistry, notifier),
	}
}
