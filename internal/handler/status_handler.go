package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/pkg/response"
)

type StatusHandler struct{}

func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

func (h *StatusHandler) Root(c *gin.Context) {
	response.Success(c, gin.H{
		"message": "Physical AI Book RAG API",
		"endpoints": gin.H{
			"health":              "/health",
			"ingest":              "/ingest (POST)",
			"query":               "/query (POST)",
			"query_selected_text": "/query_selected_text (POST)",
		},
	})
}

func (h *StatusHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "healthy",
		"service": "RAG API",
	})
}
