package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter собирает gin-движок со всеми маршрутами API
func NewRouter(h *Handler, env string, logger *zap.Logger) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		settings := v1.Group("/settings")
		{
			settings.GET("", h.ListSettings)
			settings.PUT("/:key", h.UpdateSetting)
		}

		tasks := v1.Group("/tasks")
		{
			tasks.POST("/meetings", h.RunMeetingCreation)
			tasks.POST("/notifications", h.RunNotifications)
			tasks.POST("/cleanup", h.RunCleanup)
		}

		logs := v1.Group("/logs")
		{
			logs.GET("", h.ListLogs)
			logs.DELETE("", h.PruneLogs)
			logs.GET("/export", h.ExportLogs)
		}

		v1.GET("/schedules", h.ListSchedules)
		v1.GET("/meetings", h.ListMeetings)
		v1.GET("/scheduler/status", h.SchedulerStatus)
	}

	return r
}
