package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/middleware"
)

type RouterDeps struct {
	Status         *StatusHandler
	RAG            *RAGHandler
	Ingest         *IngestHandler
	AdminJWTSecret []byte
	QueryWindow    time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("", deps.Status.Root)
	api.GET("/health", deps.Status.Health)

	queryGroup := api.Group("")
	queryGroup.Use(middleware.RateLimit(deps.QueryWindow))
	queryGroup.POST("/query", deps.RAG.Query)
	queryGroup.POST("/query_selected_text", deps.RAG.QuerySelectedText)

	adminGroup := api.Group("")
	adminGroup.Use(middleware.AdminAuth(deps.AdminJWTSecret))
	adminGroup.POST("/ingest", deps.Ingest.Ingest)
	adminGroup.POST("/reindex", deps.Ingest.Reindex)
}
