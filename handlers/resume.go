package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/resumatch/backend/auth"
	"github.com/resumatch/backend/extract"
	"github.com/resumatch/backend/models"
	"github.com/resumatch/backend/storage"
)

// StatsEvaluator produces the standalone resume critique.
type StatsEvaluator interface {
	EvaluateStats(ctx context.Context, resumeText string) (*models.ResumeStats, error)
}

// ResumeHandler handles resume upload and listing requests
type ResumeHandler struct {
	firestore *storage.FirestoreClient
	objects   *storage.CloudStorageClient
	evaluator StatsEvaluator
	logger    *zap.Logger
}

// NewResumeHandler creates a new resume handler
func NewResumeHandler(
	firestore *storage.FirestoreClient,
	objects *storage.CloudStorageClient,
	evaluator StatsEvaluator,
	logger *zap.Logger,
) *ResumeHandler {
	return &ResumeHandler{
		firestore: firestore,
		objects:   objects,
		evaluator: evaluator,
		logger:    logger,
	}
}

// Upload stores a resume file and runs the standalone analysis
// @Summary Upload a resume
// @Description Uploads a resume (PDF or TXT), records a resume entry and attaches the strengths/weaknesses/skills analysis to it. The analysis degrades to placeholder entries when the evaluator is unavailable.
// @Tags Resume
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param resume formData file true "Resume file (PDF, TXT)"
// @Success 201 {object} models.ResumeEntry
// @Failure 400 {object} models.ErrorResponse "Missing or unsupported file"
// @Failure 500 {object} models.ErrorResponse "Upload or persistence failure"
// @Router /resume/upload [post]
func (h *ResumeHandler) Upload(c *gin.Context) {
	claims := auth.GetAuthClaims(c)

	file, header, err := c.Request.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Resume file is required",
			Code:    http.StatusBadRequest,
		})
		return
	}
	defer file.Close()

	if !extract.IsSupportedFormat(header.Filename) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Unsupported file format, use PDF or TXT",
			Code:    http.StatusBadRequest,
		})
		return
	}

	objectName, err := h.objects.UploadResume(c.Request.Context(), claims.UserID, file, header)
	if err != nil {
		h.logger.Error("resume upload failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to store resume",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	entry := models.ResumeEntry{
		UserID:      claims.UserID,
		Filename:    header.Filename,
		StoragePath: objectName,
	}
	if err := h.firestore.CreateResumeEntry(c.Request.Context(), &entry); err != nil {
		h.logger.Error("failed to record resume entry", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to record resume entry",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	// Standalone analysis is best-effort; the entry stays useful for
	// matching even when it fails.
	entry.Stats = h.analyze(c.Request.Context(), entry)

	c.JSON(http.StatusCreated, entry)
}

// List returns the authenticated user's resume entries
// @Summary List resume entries
// @Tags Resume
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ResumeEntry
// @Failure 500 {object} models.ErrorResponse
// @Router /resume [get]
func (h *ResumeHandler) List(c *gin.Context) {
	claims := auth.GetAuthClaims(c)

	entries, err := h.firestore.ResumeEntriesByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("failed to list resume entries", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to list resumes",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *ResumeHandler) analyze(ctx context.Context, entry models.ResumeEntry) *models.ResumeStats {
	content, err := h.objects.DownloadResume(ctx, entry.StoragePath)
	if err != nil {
		h.logger.Warn("failed to reload resume for analysis", zap.String("entry_id", entry.ID), zap.Error(err))
		return nil
	}

	text, err := extract.ExtractText(content, entry.Filename)
	if err != nil {
		h.logger.Warn("failed to extract resume text for analysis", zap.String("entry_id", entry.ID), zap.Error(err))
		return nil
	}

	stats, err := h.evaluator.EvaluateStats(ctx, text)
	if err != nil {
		h.logger.Warn("resume analysis failed", zap.String("entry_id", entry.ID), zap.Error(err))
		return nil
	}

	if err := h.firestore.UpdateResumeStats(ctx, entry.ID, stats); err != nil {
		h.logger.Warn("failed to persist resume stats", zap.String("entry_id", entry.ID), zap.Error(err))
	}

	return stats
}
