package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/resumatch/backend/models"
)

// Exists reports whether a (resume, job) pair is already recorded in
// the user's match run. Queried before every evaluation attempt.
func (f *FirestoreClient) Exists(ctx context.Context, userID, resumeEntryID, jobID string) (bool, error) {
	run, err := f.getMatchRun(ctx, userID)
	if err != nil {
		return false, err
	}
	if run == nil {
		return false, nil
	}

	group, ok := run.Resumes[resumeEntryID]
	if !ok {
		return false, nil
	}
	for _, record := range group.Jobs {
		if record.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

// Append merges a resume's batch of new records into the user's match
// run, creating the run lazily on first write. The merge happens inside
// a Firestore transaction and drops records whose (resume, job) pair is
// already stored, so two runs racing past the Exists pre-check cannot
// produce duplicates.
func (f *FirestoreClient) Append(ctx context.Context, userID string, group models.ResumeMatchGroup) error {
	ref := f.client.Collection(matchRunsCollection).Doc(userID)

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		run := models.MatchRun{
			UserID:  userID,
			Resumes: make(map[string]models.ResumeMatchGroup),
		}

		doc, err := tx.Get(ref)
		switch {
		case err == nil:
			if err := doc.DataTo(&run); err != nil {
				return fmt.Errorf("failed to parse match run: %w", err)
			}
			if run.Resumes == nil {
				run.Resumes = make(map[string]models.ResumeMatchGroup)
			}
		case status.Code(err) == codes.NotFound:
			// first write for this user, create the run
		default:
			return fmt.Errorf("failed to read match run: %w", err)
		}

		mergeGroup(&run, group)
		run.UpdatedAt = time.Now()

		return tx.Set(ref, run)
	})
	if err != nil {
		return fmt.Errorf("failed to append match results: %w", err)
	}

	return nil
}

// Results flattens the user's match run for presentation, optionally
// filtered by fit classification.
func (f *FirestoreClient) Results(ctx context.Context, userID, filter string) ([]models.MatchResultRow, error) {
	run, err := f.getMatchRun(ctx, userID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil
	}

	return flattenRun(run, filter), nil
}

func (f *FirestoreClient) getMatchRun(ctx context.Context, userID string) (*models.MatchRun, error) {
	doc, err := f.client.Collection(matchRunsCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read match run: %w", err)
	}

	var run models.MatchRun
	if err := doc.DataTo(&run); err != nil {
		return nil, fmt.Errorf("failed to parse match run: %w", err)
	}

	return &run, nil
}

// mergeGroup appends the group's records into the run, keeping jobs
// unique by JobID within each resume group. Existing records win;
// records are never overwritten.
func mergeGroup(run *models.MatchRun, group models.ResumeMatchGroup) {
	existing, ok := run.Resumes[group.ResumeEntryID]
	if !ok {
		run.Resumes[group.ResumeEntryID] = models.ResumeMatchGroup{
			ResumeEntryID: group.ResumeEntryID,
			ResumeName:    group.ResumeName,
			Jobs:          append([]models.JobMatchRecord(nil), group.Jobs...),
		}
		return
	}

	known := make(map[string]bool, len(existing.Jobs))
	for _, record := range existing.Jobs {
		known[record.JobID] = true
	}

	for _, record := range group.Jobs {
		if known[record.JobID] {
			continue
		}
		existing.Jobs = append(existing.Jobs, record)
		known[record.JobID] = true
	}

	run.Resumes[group.ResumeEntryID] = existing
}

// flattenRun turns the nested run structure into presentation rows.
func flattenRun(run *models.MatchRun, filter string) []models.MatchResultRow {
	var rows []models.MatchResultRow
	for _, group := range run.Resumes {
		for _, record := range group.Jobs {
			if !matchesFilter(record.EvaluationResult, filter) {
				continue
			}
			rows = append(rows, models.MatchResultRow{
				ResumeEntryID:    group.ResumeEntryID,
				ResumeName:       group.ResumeName,
				JobID:            record.JobID,
				JobTitle:         record.JobTitle,
				JobCompany:       record.JobCompany,
				MatchResultText:  record.MatchResultText,
				EvaluationResult: record.EvaluationResult,
			})
		}
	}
	return rows
}

func matchesFilter(result models.EvaluationResult, filter string) bool {
	switch filter {
	case models.MatchFilterFit:
		return result.IsFit
	case models.MatchFilterNotFit:
		return !result.IsFit
	default:
		return true
	}
}
