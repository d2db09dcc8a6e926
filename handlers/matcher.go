package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/resumatch/backend/matcher"
	"github.com/resumatch/backend/models"
)

// MatchRunner executes one match run.
type MatchRunner interface {
	Run(ctx context.Context, req matcher.Request) ([]models.ResumeMatchGroup, error)
}

// ResultsReader retrieves the flattened historical match results.
type ResultsReader interface {
	Results(ctx context.Context, userID, filter string) ([]models.MatchResultRow, error)
}

// MatcherHandler handles match run and result retrieval requests
type MatcherHandler struct {
	runner       MatchRunner
	results      ResultsReader
	fitThreshold float64
	logger       *zap.Logger
}

// NewMatcherHandler creates a new matcher handler
func NewMatcherHandler(runner MatchRunner, results ResultsReader, fitThreshold float64, logger *zap.Logger) *MatcherHandler {
	return &MatcherHandler{
		runner:       runner,
		results:      results,
		fitThreshold: fitThreshold,
		logger:       logger,
	}
}

// Matcher runs the resume/job matching pipeline
// @Summary Run resume matching
// @Description Evaluates the selected resumes against the selected jobs. Already-evaluated pairs are skipped; progress is broadcast over the WebSocket channel. The response carries only records newly computed by this run.
// @Tags Matcher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.MatcherRequest true "Match run selection"
// @Success 200 {object} models.MatcherResponse "Newly computed match results"
// @Failure 400 {object} models.ErrorResponse "Missing userId"
// @Failure 404 {object} models.ErrorResponse "No jobs or resumes match the selection"
// @Failure 500 {object} models.ErrorResponse "Storage failure"
// @Router /resume/matcher [post]
func (h *MatcherHandler) Matcher(c *gin.Context) {
	var req models.MatcherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "userId is required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	results, err := h.runner.Run(c.Request.Context(), matcher.Request{
		UserID:           req.UserID,
		ResumeEntryIDs:   req.ResumeEntryIDs,
		JobIDs:           req.JobIDs,
		SelectAllJobs:    req.SelectAllJobs,
		SelectAllResumes: req.SelectAllResumes,
		FitThreshold:     h.fitThreshold,
	})
	if err != nil {
		h.respondMatchError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MatcherResponse{
		Message: "Resume matching completed",
		Success: true,
		Results: results,
	})
}

// MatchResults lists the stored match results for a user
// @Summary List match results
// @Description Returns the flattened historical results of all match runs for a user, optionally filtered by fit classification.
// @Tags Matcher
// @Produce json
// @Security BearerAuth
// @Param userId query string true "User id"
// @Param filter query string false "fit | notFit | all" default(all)
// @Success 200 {object} models.MatchResultsResponse "Flattened results"
// @Failure 400 {object} models.ErrorResponse "Missing userId or unknown filter"
// @Failure 500 {object} models.ErrorResponse "Storage failure"
// @Router /resume/matcher/results [get]
func (h *MatcherHandler) MatchResults(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "userId is required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	filter := c.DefaultQuery("filter", models.MatchFilterAll)
	switch filter {
	case models.MatchFilterAll, models.MatchFilterFit, models.MatchFilterNotFit:
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "filter must be one of fit, notFit, all",
			Code:    http.StatusBadRequest,
		})
		return
	}

	rows, err := h.results.Results(c.Request.Context(), userID, filter)
	if err != nil {
		h.logger.Error("failed to read match results", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to retrieve match results",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, models.MatchResultsResponse{
		Success: true,
		Results: rows,
	})
}

func (h *MatcherHandler) respondMatchError(c *gin.Context, err error) {
	var validation *matcher.ValidationError
	var notFound *matcher.NotFoundError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: validation.Message,
			Code:    http.StatusBadRequest,
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Message: notFound.Message,
			Code:    http.StatusNotFound,
		})
	default:
		h.logger.Error("match run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "An error occurred while processing the resume match.",
			Code:    http.StatusInternalServerError,
		})
	}
}
