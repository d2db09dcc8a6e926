package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/resumatch/backend/models"
)

// rawEvaluation mirrors the strict JSON shape the fit prompt demands.
// Pointer fields detect missing keys, not just zero values.
type rawEvaluation struct {
	Scores *struct {
		Relevance    *float64 `json:"relevance"`
		Skills       *float64 `json:"skills"`
		Experience   *float64 `json:"experience"`
		Presentation *float64 `json:"presentation"`
	} `json:"scores"`
	CompositeScore *float64 `json:"compositeScore"`
	Recommendation string   `json:"recommendation"`
	IsFit          *bool    `json:"isFit"`
}

func parseEvaluation(text string) (models.EvaluationResult, error) {
	var raw rawEvaluation
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return models.EvaluationResult{}, fmt.Errorf("failed to unmarshal evaluation: %w", err)
	}

	if raw.Scores == nil {
		return models.EvaluationResult{}, fmt.Errorf("evaluation is missing scores object")
	}
	if raw.Scores.Relevance == nil || raw.Scores.Skills == nil ||
		raw.Scores.Experience == nil || raw.Scores.Presentation == nil {
		return models.EvaluationResult{}, fmt.Errorf("evaluation is missing one or more sub-scores")
	}
	if raw.CompositeScore == nil {
		return models.EvaluationResult{}, fmt.Errorf("evaluation is missing compositeScore")
	}
	if raw.IsFit == nil {
		return models.EvaluationResult{}, fmt.Errorf("evaluation is missing isFit")
	}

	return models.EvaluationResult{
		Scores: models.EvaluationScores{
			Relevance:    *raw.Scores.Relevance,
			Skills:       *raw.Scores.Skills,
			Experience:   *raw.Scores.Experience,
			Presentation: *raw.Scores.Presentation,
		},
		CompositeScore: *raw.CompositeScore,
		Recommendation: raw.Recommendation,
		IsFit:          *raw.IsFit,
	}, nil
}

func parseStats(text string) (*models.ResumeStats, error) {
	var stats models.ResumeStats
	if err := json.Unmarshal([]byte(text), &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}

	if stats.Strengths == nil || stats.Weaknesses == nil || stats.Skills == nil {
		return nil, fmt.Errorf("stats response is missing one or more required lists")
	}

	return &stats, nil
}

func parsePreparation(text string) (*models.PreparationResources, error) {
	var resources models.PreparationResources
	if err := json.Unmarshal([]byte(text), &resources); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preparation resources: %w", err)
	}

	if resources.KeySkills == nil || resources.InterviewQuestions == nil || resources.PreparationTips == nil {
		return nil, fmt.Errorf("preparation response is missing one or more required lists")
	}

	return &resources, nil
}
