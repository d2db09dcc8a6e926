package models

import "time"

// EvaluationScores holds the four per-criterion scores, each in [0,100].
type EvaluationScores struct {
	Relevance    float64 `json:"relevance" firestore:"relevance"`
	Skills       float64 `json:"skills" firestore:"skills"`
	Experience   float64 `json:"experience" firestore:"experience"`
	Presentation float64 `json:"presentation" firestore:"presentation"`
}

// EvaluationResult is the validated outcome of a single resume/job
// evaluation. CompositeScore is the evaluator's weighted combination
// (relevance 20%, skills 35%, experience 35%, presentation 10%) and is
// trusted as given, never recomputed locally.
type EvaluationResult struct {
	Scores         EvaluationScores `json:"scores" firestore:"scores"`
	CompositeScore float64          `json:"compositeScore" firestore:"compositeScore"`
	Recommendation string           `json:"recommendation,omitempty" firestore:"recommendation"`
	IsFit          bool             `json:"isFit" firestore:"isFit"`
}

// FallbackEvaluation is the zero-valued result substituted when the
// evaluator cannot produce a structurally valid response. A single bad
// evaluation must not abort a batch.
func FallbackEvaluation() EvaluationResult {
	return EvaluationResult{
		Scores:         EvaluationScores{},
		CompositeScore: 0,
		Recommendation: "",
		IsFit:          false,
	}
}

// JobMatchRecord is one persisted resume/job evaluation. Records are
// immutable once stored; re-evaluations of the same pair are skipped,
// never overwritten.
type JobMatchRecord struct {
	JobID            string           `json:"jobId" firestore:"jobId"`
	JobTitle         string           `json:"jobTitle" firestore:"jobTitle"`
	JobCompany       string           `json:"jobCompany" firestore:"jobCompany"`
	MatchResultText  string           `json:"matchResult" firestore:"matchResult"`
	EvaluationResult EvaluationResult `json:"evaluationResult" firestore:"evaluationResult"`
}

// ResumeMatchGroup collects the match records of one resume entry.
// Jobs are append-only and unique by JobID within the group.
type ResumeMatchGroup struct {
	ResumeEntryID string           `json:"resumeEntryId" firestore:"resumeEntryId"`
	ResumeName    string           `json:"resumeName" firestore:"resumeName"`
	Jobs          []JobMatchRecord `json:"jobs" firestore:"jobs"`
}

// MatchRun is the per-user aggregate of all evaluation outcomes, keyed
// by user ID. Created lazily on the first successful match and only
// ever extended by the orchestrator.
type MatchRun struct {
	UserID    string                      `json:"userId" firestore:"userId"`
	Resumes   map[string]ResumeMatchGroup `json:"resumes" firestore:"resumes"`
	UpdatedAt time.Time                   `json:"updatedAt" firestore:"updatedAt"`
}

// MatchResultRow is one flattened row of the nested MatchRun structure,
// shaped for presentation.
type MatchResultRow struct {
	ResumeEntryID    string           `json:"resumeEntryId"`
	ResumeName       string           `json:"resumeName"`
	JobID            string           `json:"jobId"`
	JobTitle         string           `json:"jobTitle"`
	JobCompany       string           `json:"jobCompany"`
	MatchResultText  string           `json:"matchResult"`
	EvaluationResult EvaluationResult `json:"evaluationResult"`
}

// Result filters accepted by the results endpoint.
const (
	MatchFilterAll    = "all"
	MatchFilterFit    = "fit"
	MatchFilterNotFit = "notFit"
)
