package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tasknotes/internal/service"
)

type GenerateHandler struct {
	generation *service.GenerationService
	log        *zap.SugaredLogger
}

// GenerateForUser materializes the calling user's templates up to today.
func (h *GenerateHandler) GenerateForUser(c *gin.Context) {
	report, err := h.generation.GenerateForUser(c.Request.Context(), c.GetString("uid"))
	if err != nil {
		h.log.Errorw("manual generation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"generated": len(report.Generated),
		"details":   report.Generated,
		"failures":  report.Failures,
	})
}

// GenerateAll materializes all users' templates. Intended for the scheduler
// or an internal caller.
func (h *GenerateHandler) GenerateAll(c *gin.Context) {
	report, err := h.generation.RunBatch(c.Request.Context())
	if err != nil {
		h.log.Errorw("batch generation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"generatedCount": len(report.Generated),
		"details":        report.Generated,
		"failures":       report.Failures,
	})
}
