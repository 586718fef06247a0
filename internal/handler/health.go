package handler

import (
	"net/http"

	"macrotrend-snapshot/pkg/tracing"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Liveness check; never triggers a fetch cycle
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": tracing.ServiceVersion})
}
