package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Sumayyafazalhussain/humanoid-book/internal/pkg/errcode"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/pkg/response"
	"github.com/Sumayyafazalhussain/humanoid-book/internal/service"
)

type RAGHandler struct {
	rag *service.RAGService
}

func NewRAGHandler(rag *service.RAGService) *RAGHandler {
	return &RAGHandler{rag: rag}
}

type queryRequest struct {
	Query string `json:"query" binding:"required"`
}

type selectedTextQueryRequest struct {
	Query        string `json:"query" binding:"required"`
	SelectedText string `json:"selected_text" binding:"required"`
}

func (h *RAGHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.rag.QueryCorpus(c.Request.Context(), req.Query)
	if err != nil {
		// Upstream failures stay client-visible: HTTP 200 with an error
		// field instead of a bare 5xx.
		msg := providerMessage(c, err)
		response.Success(c, gin.H{
			"answer":  "Error processing your query: " + msg,
			"sources": []string{},
			"error":   msg,
			"query":   req.Query,
		})
		return
	}
	response.Success(c, result)
}

func (h *RAGHandler) QuerySelectedText(c *gin.Context) {
	var req selectedTextQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.rag.QuerySelection(c.Request.Context(), req.Query, req.SelectedText)
	if err != nil {
		msg := providerMessage(c, err)
		response.Success(c, gin.H{
			"answer": "Error: " + msg,
			"source": "Error",
			"error":  msg,
			"query":  req.Query,
		})
		return
	}
	response.Success(c, result)
}

// providerMessage logs the failure with its pipeline stage and returns the
// underlying provider message for the client payload.
func providerMessage(c *gin.Context, err error) string {
	var perr *service.ProviderError
	if errors.As(err, &perr) {
		logutil.GetLogger(c.Request.Context()).Error("rag query failed",
			zap.String("stage", string(perr.Stage)),
			zap.Error(perr.Err),
		)
		return perr.Err.Error()
	}
	logutil.GetLogger(c.Request.Context()).Error("rag query failed", zap.Error(err))
	return err.Error()
}
