package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/pkg/errcode"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/pkg/response"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/service"
)

type IngestHandler struct {
	ingest *service.IngestService
}

func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

func (h *IngestHandler) Ingest(c *gin.Context) {
	result, err := h.ingest.Run(c.Request.Context())
	if err != nil {
		logutil.GetLogger(c.Request.Context()).Error("ingestion failed", zap.Error(err))
		response.Error(c, errcode.ErrIngestFailed, "ingestion failed")
		return
	}
	response.Success(c, gin.H{
		"message": "Ingestion completed successfully",
		"data":    result,
	})
}

func (h *IngestHandler) Reindex(c *gin.Context) {
	result, err := h.ingest.Reindex(c.Request.Context())
	if err != nil {
		logutil.GetLogger(c.Request.Context()).Error("reindex failed", zap.Error(err))
		response.Error(c, errcode.ErrIngestFailed, "reindex failed")
		return
	}
	response.Success(c, gin.H{
		"message": "Reindex completed successfully",
		"data":    result,
	})
}
