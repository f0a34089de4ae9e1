package app

import (
	httpH "github.com/sprintflow/sprintflow-backend/internal/http/handlers"
	httpMW "github.com/sprintflow/sprintflow-backend/internal/http/middleware"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
	"github.com/sprintflow/sprintflow-backend/internal/realtime"
)

type Handlers struct {
	Auth       *httpH.AuthHandler
	User       *httpH.UserHandler
	Sprint     *httpH.SprintHandler
	Points     *httpH.PointsHandler
	Completion *httpH.CompletionHandler
	Realtime   *httpH.RealtimeHandler
	Health     *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, hub *realtime.Hub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:       httpH.NewAuthHandler(serviceset.Auth),
		User:       httpH.NewUserHandler(serviceset.User),
		Sprint:     httpH.NewSprintHandler(serviceset.Sprint),
		Points:     httpH.NewPointsHandler(serviceset.Points),
		Completion: httpH.NewCompletionHandler(serviceset.Completion),
		Realtime:   httpH.NewRealtimeHandler(log, hub),
		Health:     httpH.NewHealthHandler(),
	}
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, serviceset.Auth),
	}
}
