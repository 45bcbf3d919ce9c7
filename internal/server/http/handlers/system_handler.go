package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dealerflow/internal/server/http/dto"
)

// SystemHandler serves health and request schemas.
type SystemHandler struct {
	facade HealthFacade
}

// NewSystemHandler constructs SystemHandler.
func NewSystemHandler(facade HealthFacade) *SystemHandler {
	return &SystemHandler{facade: facade}
}

// Health handles GET /api/health.
func (h *SystemHandler) Health(c *gin.Context) {
	if err := h.facade.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Schema handles GET /api/schema/:name.
func (h *SystemHandler) Schema(c *gin.Context) {
	schema, ok := dto.Schema(c.Param("name"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, schema)
}
