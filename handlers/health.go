package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resumatch/backend/models"
)

// HealthCheck reports service liveness
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Version: "1.0.0",
	})
}
