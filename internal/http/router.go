package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/sprintflow/sprintflow-backend/internal/http/handlers"
	httpMW "github.com/sprintflow/sprintflow-backend/internal/http/middleware"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler       *httpH.AuthHandler
	UserHandler       *httpH.UserHandler
	SprintHandler     *httpH.SprintHandler
	PointsHandler     *httpH.PointsHandler
	CompletionHandler *httpH.CompletionHandler
	RealtimeHandler   *httpH.RealtimeHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.CORS())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/refresh", cfg.AuthHandler.Refresh)
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/events/stream", cfg.RealtimeHandler.Stream)
		}

		// Users
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.GET("/users", cfg.UserHandler.List)
			protected.GET("/leaderboard", cfg.UserHandler.Leaderboard)
			protected.GET("/users/:id", cfg.UserHandler.Get)
			protected.PUT("/users/:id", cfg.UserHandler.UpdateRole)
			protected.DELETE("/users/:id", cfg.UserHandler.Delete)
		}

		// Sprints
		if cfg.SprintHandler != nil {
			protected.POST("/sprints", cfg.SprintHandler.Create)
			protected.GET("/sprints", cfg.SprintHandler.List)
			protected.POST("/sprints/sync", cfg.SprintHandler.Synchronize)
			protected.GET("/sprints/:id", cfg.SprintHandler.Get)
			protected.PUT("/sprints/:id", cfg.SprintHandler.Update)
			protected.DELETE("/sprints/:id", cfg.SprintHandler.Delete)
		}

		// Points registry
		if cfg.PointsHandler != nil {
			protected.POST("/points-registry", cfg.PointsHandler.Record)
			protected.DELETE("/points-registry/:id", cfg.PointsHandler.Remove)
			protected.GET("/points-registry/sprint/:sprintId", cfg.PointsHandler.ListForSprint)
			protected.GET("/points-registry/user/:userId", cfg.PointsHandler.ListForUser)
			protected.GET("/points-registry/user/:userId/sprint/:sprintId", cfg.PointsHandler.ListForUserSprint)
		}

		// Completions
		if cfg.CompletionHandler != nil {
			protected.POST("/completions", cfg.CompletionHandler.Submit)
			protected.DELETE("/completions/:id", cfg.CompletionHandler.Delete)
			protected.GET("/completions/sprint/:sprintId", cfg.CompletionHandler.Contributions)
			protected.GET("/completions/sprint/:sprintId/records", cfg.CompletionHandler.ListRecords)
			protected.GET("/completions/sprint/:sprintId/user/:userId", cfg.CompletionHandler.GetForUser)
		}
	}

	return r
}
