package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/resumatch/backend/models"
)

// PreparationGenerator produces interview preparation content.
type PreparationGenerator interface {
	PreparationResources(ctx context.Context, jobDescription string) (*models.PreparationResources, error)
}

// InterviewHandler handles interview preparation requests
type InterviewHandler struct {
	generator PreparationGenerator
	logger    *zap.Logger
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(generator PreparationGenerator, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{generator: generator, logger: logger}
}

// Prepare generates interview preparation resources for a job description
// @Summary Generate interview preparation resources
// @Description Produces key skills, likely interview questions and preparation tips for a job description.
// @Tags Interview
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PreparationRequest true "Job description"
// @Success 200 {object} models.PreparationResponse
// @Failure 400 {object} models.ErrorResponse "Missing job description"
// @Failure 500 {object} models.ErrorResponse "Generation failure"
// @Router /interview/prepare [post]
func (h *InterviewHandler) Prepare(c *gin.Context) {
	var req models.PreparationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Job description is required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	resources, err := h.generator.PreparationResources(c.Request.Context(), req.JobDescription)
	if err != nil {
		h.logger.Error("failed to generate preparation resources", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to generate preparation resources",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, models.PreparationResponse{PreparationResources: resources})
}
