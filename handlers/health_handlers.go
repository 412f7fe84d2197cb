package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	upstreamHost string
}

func NewHealthHandler(upstreamHost string) *HealthHandler {
	return &HealthHandler{upstreamHost: upstreamHost}
}

// HealthCheckHandler godoc
// @Summary      Health Check
// @Description  Reports liveness and the configured metadata service host. It does not call the upstream.
// @Tags         Monitoring
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/v1/health [get]
func (h *HealthHandler) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "UP",
		"upstream": h.upstreamHost,
	})
}
