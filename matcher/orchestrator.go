package matcher

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/resumatch/backend/models"
)

// Event names published to the progress channel.
const (
	EventProgress      = "progress"
	EventProgressBatch = "progress-batch"
	EventDone          = "done"
)

// DefaultFitThreshold is the composite-score cutoff above which a pair
// classifies as a good fit.
const DefaultFitThreshold = 70

// ProgressPayload is the body of every progress-channel event.
type ProgressPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// Publisher broadcasts advisory events to any listening observer.
// Fire-and-forget: no delivery guarantee, no backpressure.
type Publisher interface {
	Publish(event string, payload any)
}

// Evaluator scores a resume against a job description.
type Evaluator interface {
	EvaluateFit(ctx context.Context, resumeText, jobDescription string) (models.EvaluationResult, error)
}

// JobCatalog resolves the job universe for a run.
type JobCatalog interface {
	AllJobs(ctx context.Context) ([]models.Job, error)
	JobsByIDs(ctx context.Context, ids []string) ([]models.Job, error)
}

// ResumeCatalog resolves the resume universe for a run.
type ResumeCatalog interface {
	AllResumeEntries(ctx context.Context) ([]models.ResumeEntry, error)
	ResumeEntriesByIDs(ctx context.Context, ids []string) ([]models.ResumeEntry, error)
}

// Store is the persisted aggregate of evaluation outcomes.
type Store interface {
	Exists(ctx context.Context, userID, resumeEntryID, jobID string) (bool, error)
	Append(ctx context.Context, userID string, group models.ResumeMatchGroup) error
}

// TextLoader extracts the text content of a resume entry.
type TextLoader interface {
	LoadText(ctx context.Context, entry models.ResumeEntry) (string, error)
}

// Limiter gates evaluator calls.
type Limiter interface {
	Admit(ctx context.Context) error
}

// Request selects the universes for one match run.
type Request struct {
	UserID           string
	ResumeEntryIDs   []string
	JobIDs           []string
	SelectAllJobs    bool
	SelectAllResumes bool
	FitThreshold     float64
}

// Orchestrator sweeps resumes across jobs sequentially: dedup via the
// store, rate-limited evaluation, per-resume batched persistence and
// progress events along the way. A single run uses one logical worker;
// the limiter is the only resource shared across concurrent runs.
type Orchestrator struct {
	jobs      JobCatalog
	resumes   ResumeCatalog
	store     Store
	evaluator Evaluator
	loader    TextLoader
	limiter   Limiter
	publisher Publisher
	logger    *zap.Logger
}

// NewOrchestrator creates a match orchestrator.
func NewOrchestrator(
	jobs JobCatalog,
	resumes ResumeCatalog,
	store Store,
	evaluator Evaluator,
	loader TextLoader,
	limiter Limiter,
	publisher Publisher,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		jobs:      jobs,
		resumes:   resumes,
		store:     store,
		evaluator: evaluator,
		loader:    loader,
		limiter:   limiter,
		publisher: publisher,
		logger:    logger,
	}
}

// Run executes one match run and returns only the records newly
// computed by it, grouped per resume. Evaluation failures degrade to
// fallback records; empty universes and storage failures abort the run.
func (o *Orchestrator) Run(ctx context.Context, req Request) ([]models.ResumeMatchGroup, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, &ValidationError{Message: "userId is required"}
	}

	threshold := req.FitThreshold
	if threshold <= 0 {
		threshold = DefaultFitThreshold
	}

	jobs, err := o.resolveJobs(ctx, req)
	if err != nil {
		return nil, err
	}

	entries, err := o.resolveResumes(ctx, req)
	if err != nil {
		return nil, err
	}

	o.logger.Info("starting match run",
		zap.String("user_id", req.UserID),
		zap.Int("resumes", len(entries)),
		zap.Int("jobs", len(jobs)))

	// Non-nil so the done event always carries a results array, even
	// when every pair was a duplicate.
	newGroups := []models.ResumeMatchGroup{}

	for _, entry := range entries {
		group, err := o.matchResume(ctx, req.UserID, entry, jobs, threshold)
		if err != nil {
			return nil, err
		}
		if group != nil {
			newGroups = append(newGroups, *group)
		}
	}

	o.publisher.Publish(EventDone, ProgressPayload{
		Success: true,
		Message: "Resume matching completed.",
		Results: newGroups,
	})

	return newGroups, nil
}

func (o *Orchestrator) resolveJobs(ctx context.Context, req Request) ([]models.Job, error) {
	var jobs []models.Job
	var err error

	if req.SelectAllJobs {
		jobs, err = o.jobs.AllJobs(ctx)
	} else {
		jobs, err = o.jobs.JobsByIDs(ctx, req.JobIDs)
	}
	if err != nil {
		return nil, &StorageError{Op: "job lookup", Err: err}
	}
	if len(jobs) == 0 {
		return nil, &NotFoundError{Message: "No jobs found."}
	}

	return jobs, nil
}

func (o *Orchestrator) resolveResumes(ctx context.Context, req Request) ([]models.ResumeEntry, error) {
	var entries []models.ResumeEntry
	var err error

	if req.SelectAllResumes {
		entries, err = o.resumes.AllResumeEntries(ctx)
	} else {
		entries, err = o.resumes.ResumeEntriesByIDs(ctx, req.ResumeEntryIDs)
	}
	if err != nil {
		return nil, &StorageError{Op: "resume lookup", Err: err}
	}
	if len(entries) == 0 {
		return nil, &NotFoundError{Message: "No resumes found."}
	}

	return entries, nil
}

// matchResume runs the job loop for a single resume and persists any
// new records in one batched append. The returned group is nil when no
// new records were produced (all pairs were duplicates).
func (o *Orchestrator) matchResume(ctx context.Context, userID string, entry models.ResumeEntry, jobs []models.Job, threshold float64) (*models.ResumeMatchGroup, error) {
	resumeText, err := o.loader.LoadText(ctx, entry)
	if err != nil {
		// One unreadable resume must not abort the batch.
		o.logger.Warn("failed to load resume text, skipping resume",
			zap.String("resume_entry_id", entry.ID),
			zap.Error(err))
		o.publisher.Publish(EventProgress, ProgressPayload{
			Success: false,
			Message: fmt.Sprintf("Could not read resume %s, skipping.", entry.Filename),
		})
		return nil, nil
	}

	group := models.ResumeMatchGroup{
		ResumeEntryID: entry.ID,
		ResumeName:    entry.Filename,
	}

	for _, job := range jobs {
		exists, err := o.store.Exists(ctx, userID, entry.ID, job.ID)
		if err != nil {
			return nil, &StorageError{Op: "dedup check", Err: err}
		}
		if exists {
			o.publisher.Publish(EventProgress, ProgressPayload{
				Success: true,
				Message: fmt.Sprintf("Match for resume %s and job %s already exists.", entry.Filename, job.Title),
			})
			continue
		}

		if err := o.limiter.Admit(ctx); err != nil {
			return nil, err
		}

		result, err := o.evaluator.EvaluateFit(ctx, resumeText, job.Description)
		if err != nil {
			o.logger.Warn("evaluation failed, using fallback result",
				zap.String("job_id", job.ID),
				zap.Error(err))
			result = models.FallbackEvaluation()
		}

		record := models.JobMatchRecord{
			JobID:            job.ID,
			JobTitle:         job.Title,
			JobCompany:       job.Company,
			MatchResultText:  classifyMatch(job.Title, result, threshold),
			EvaluationResult: result,
		}
		group.Jobs = append(group.Jobs, record)

		o.publisher.Publish(EventProgress, ProgressPayload{
			Success: true,
			Message: record.MatchResultText,
			Results: []models.JobMatchRecord{record},
		})
	}

	if len(group.Jobs) == 0 {
		return nil, nil
	}

	if err := o.store.Append(ctx, userID, group); err != nil {
		return nil, &StorageError{Op: "result append", Err: err}
	}

	o.publisher.Publish(EventProgressBatch, ProgressPayload{
		Success: true,
		Message: fmt.Sprintf("Completed matching for resume %s.", entry.Filename),
		Results: group,
	})

	return &group, nil
}

// classifyMatch renders the human-readable verdict. Scores are rounded
// for display only; the stored record keeps the evaluator's values.
func classifyMatch(jobTitle string, result models.EvaluationResult, threshold float64) string {
	score := strconv.FormatFloat(result.CompositeScore, 'f', 2, 64)

	if result.CompositeScore >= threshold {
		return fmt.Sprintf("Good fit for job %s with score %s%%.", jobTitle, score)
	}

	text := fmt.Sprintf("Not a good fit for job %s with score %s%%.", jobTitle, score)
	if result.Recommendation != "" {
		text += " " + result.Recommendation
	}
	return text
}
