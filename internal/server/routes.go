package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/wordsmith/internal/app"
)

// SetupRoutes registers every route on router.
func SetupRoutes(router *gin.Engine, a *app.Application) {
	cfg := a.Config()

	router.GET("/health", HealthCheck)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(a.Metrics().Registry(), promhttp.HandlerOpts{})))
	}

	router.POST("/api/analyze-text", HandleAnalyzeText(a))

	v1 := router.Group("/v1")
	{
		documents := v1.Group("/documents")
		{
			documents.GET("", ListDocuments(a))
			documents.GET("/:id", GetDocument(a))
			documents.PUT("/:id", PutDocument(a))
			documents.DELETE("/:id", DeleteDocument(a))
		}

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", OpenSession(a))
			sessions.GET("", ListSessions(a))
			sessions.GET("/:id", GetSession(a))
			sessions.DELETE("/:id", CloseSession(a))
			sessions.POST("/:id/edits", EditSession(a))
			sessions.PUT("/:id/caret", SetCaret(a))
			sessions.POST("/:id/analyze", AnalyzeSession(a))
			sessions.POST("/:id/suggestions/:sid/apply", ApplySuggestion(a))
			sessions.DELETE("/:id/suggestions/:sid", DismissSuggestion(a))
			sessions.GET("/:id/projection", GetProjection(a))
			sessions.GET("/:id/notifications", ListNotifications(a))
			sessions.DELETE("/:id/notifications/:nid", DismissNotification(a))
			sessions.GET("/:id/events", HandleEvents(a))
		}
	}
}
