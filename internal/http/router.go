package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/mastery-engine/internal/http/handlers"
	httpMW "github.com/yungbote/mastery-engine/internal/http/middleware"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	HealthHandler   *httpH.HealthHandler
	SessionHandler  *httpH.SessionHandler
	MaterialHandler *httpH.MaterialHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.MaterialHandler != nil {
			api.GET("/materials", cfg.MaterialHandler.List)
			api.GET("/materials/:id", cfg.MaterialHandler.Get)
			api.GET("/materials/:id/concepts", cfg.MaterialHandler.ListConcepts)
		}

		if cfg.SessionHandler != nil {
			api.POST("/sessions", cfg.SessionHandler.Start)
			api.GET("/sessions/:id", cfg.SessionHandler.Get)
			api.GET("/sessions/:id/next", cfg.SessionHandler.Next)
			api.POST("/sessions/:id/answer", cfg.SessionHandler.Answer)
			api.POST("/sessions/:id/skip", cfg.SessionHandler.Skip)
			api.POST("/sessions/:id/hint", cfg.SessionHandler.Hint)
			api.POST("/sessions/:id/peek", cfg.SessionHandler.Peek)
			api.POST("/sessions/:id/end", cfg.SessionHandler.End)
			api.POST("/sessions/:id/abandon", cfg.SessionHandler.Abandon)
		}
	}

	return r
}
