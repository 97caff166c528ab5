package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/interfaces"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/tracing"
)

type IngestionHandler struct {
	ingestion interfaces.IngestionService
}

func NewIngestionHandler(ingestion interfaces.IngestionService) *IngestionHandler {
	return &IngestionHandler{ingestion: ingestion}
}

// RunAll triggers a run of every enabled mailbox configuration and waits for it.
func (h *IngestionHandler) RunAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "RunAllIngestion", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		results, err := h.ingestion.RunAllEnabled(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, dto.RunAllResult{Results: results})
	}
}

// RunConfiguration triggers a run of a single mailbox configuration.
func (h *IngestionHandler) RunConfiguration() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "RunConfigurationIngestion", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		configurationID := c.Param("id")
		tracing.TagEntity(span, configurationID)

		result, err := h.ingestion.RunForConfiguration(ctx, configurationID)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(statusForRunError(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func statusForRunError(err error) int {
	switch {
	case errors.Is(err, ingesterrors.ErrConfigurationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ingesterrors.ErrConfigurationDisabled):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
