package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/orclabs/elt-orchestrator/internal/transport/http/handler"
	"github.com/orclabs/elt-orchestrator/internal/transport/http/middleware"
	sloggin "github.com/samber/slog-gin"
)

func NewRouter(
	logger *slog.Logger,
	jobHandler *handler.JobHandler,
	runHandler *handler.RunHandler,
	authHandler *handler.AuthHandler,
	jwtKey []byte,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/health", handler.Health)

	// Public auth routes
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	authMW := middleware.Auth(jwtKey)

	jobs := r.Group("/jobs", authMW)
	jobs.POST("", jobHandler.Create)
	jobs.GET("", jobHandler.List)
	jobs.GET("/:id", jobHandler.GetByID)
	jobs.POST("/:id/run", jobHandler.TriggerRun)

	runs := r.Group("/runs", authMW)
	runs.GET("", runHandler.List)
	runs.GET("/:id", runHandler.GetByID)

	return r
}
