package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/resumatch/backend/models"
	"github.com/resumatch/backend/storage"
)

// JobsHandler handles job catalog requests
type JobsHandler struct {
	store  *storage.FirestoreClient
	logger *zap.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(store *storage.FirestoreClient, logger *zap.Logger) *JobsHandler {
	return &JobsHandler{store: store, logger: logger}
}

// Create adds a job posting to the catalog
// @Summary Add a job
// @Tags Jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param job body models.Job true "Job posting"
// @Success 201 {object} models.Job
// @Failure 400 {object} models.ErrorResponse "Missing required fields or duplicate"
// @Router /jobs [post]
func (h *JobsHandler) Create(c *gin.Context) {
	var job models.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if job.Title == "" || job.Location == "" || job.Description == "" || job.Company == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Please provide all required parameters",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if err := h.store.CreateJob(c.Request.Context(), &job); err != nil {
		h.logger.Warn("failed to create job", zap.String("title", job.Title), zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	c.JSON(http.StatusCreated, job)
}

// List returns all jobs in the catalog
// @Summary List jobs
// @Tags Jobs
// @Produce json
// @Success 200 {array} models.Job
// @Failure 500 {object} models.ErrorResponse
// @Router /jobs [get]
func (h *JobsHandler) List(c *gin.Context) {
	jobs, err := h.store.AllJobs(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to list jobs",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// Search filters the job catalog
// @Summary Search jobs
// @Tags Jobs
// @Produce json
// @Param title query string false "Title substring"
// @Param location query string false "Location substring"
// @Param experienceLevel query string false "Exact experience level"
// @Success 200 {array} models.Job
// @Failure 500 {object} models.ErrorResponse
// @Router /jobs/search [get]
func (h *JobsHandler) Search(c *gin.Context) {
	var filter models.JobSearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Invalid search filter",
			Code:    http.StatusBadRequest,
		})
		return
	}

	jobs, err := h.store.SearchJobs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to search jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to search jobs",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// Delete removes a job posting
// @Summary Delete a job
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job id"
// @Success 200 {object} map[string]bool
// @Failure 500 {object} models.ErrorResponse
// @Router /jobs/{id} [delete]
func (h *JobsHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("failed to delete job", zap.String("job_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to delete job",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
