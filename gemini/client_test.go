package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/resumatch/backend/models"
)

type stubGenerator struct {
	responses []string
	errs      []error
	prompts   []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	call := len(s.prompts)
	s.prompts = append(s.prompts, prompt)

	if call < len(s.errs) && s.errs[call] != nil {
		return "", s.errs[call]
	}
	if call < len(s.responses) {
		return s.responses[call], nil
	}
	return "", errors.New("unexpected extra call")
}

func newStubClient(stub *stubGenerator) *Client {
	return &Client{
		generator: stub,
		modelName: "stub-model",
		logger:    zap.NewNop(),
	}
}

const validEvaluation = `{
	"scores": {"relevance": 80, "skills": 75, "experience": 60, "presentation": 90},
	"compositeScore": 71.5,
	"recommendation": "Add more backend project detail.",
	"isFit": true
}`

func TestEvaluateFitRetriesOnceWithAmendedPrompt(t *testing.T) {
	stub := &stubGenerator{responses: []string{"I think this resume is great!", validEvaluation}}
	client := newStubClient(stub)

	result, err := client.EvaluateFit(context.Background(), "resume text", "job description")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stub.prompts) != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", len(stub.prompts))
	}
	if strings.HasSuffix(stub.prompts[0], retryAmendment) {
		t.Fatalf("first prompt should not carry the amendment")
	}
	if !strings.HasSuffix(stub.prompts[1], retryAmendment) {
		t.Fatalf("retry prompt should carry the amendment, got %q", stub.prompts[1][len(stub.prompts[1])-80:])
	}
	if result.CompositeScore != 71.5 || !result.IsFit {
		t.Fatalf("expected the retried response to be used, got %+v", result)
	}
}

func TestEvaluateFitFallsBackAfterTwoMalformedResponses(t *testing.T) {
	stub := &stubGenerator{responses: []string{"not json", "still not json"}}
	client := newStubClient(stub)

	result, err := client.EvaluateFit(context.Background(), "resume text", "job description")
	if err != nil {
		t.Fatalf("fallback must not surface an error, got %v", err)
	}

	if len(stub.prompts) != 2 {
		t.Fatalf("expected exactly two calls, got %d", len(stub.prompts))
	}
	if result != models.FallbackEvaluation() {
		t.Fatalf("expected zero-valued fallback, got %+v", result)
	}
}

func TestEvaluateFitFallsBackAfterTwoCallFailures(t *testing.T) {
	boom := errors.New("model unavailable")
	stub := &stubGenerator{errs: []error{boom, boom}}
	client := newStubClient(stub)

	result, err := client.EvaluateFit(context.Background(), "resume text", "job description")
	if err != nil {
		t.Fatalf("fallback must not surface an error, got %v", err)
	}
	if result != models.FallbackEvaluation() {
		t.Fatalf("expected zero-valued fallback, got %+v", result)
	}
}

func TestEvaluateStatsFallbackAfterTwoMalformedResponses(t *testing.T) {
	stub := &stubGenerator{responses: []string{"nope", "still nope"}}
	client := newStubClient(stub)

	stats, err := client.EvaluateStats(context.Background(), "resume text")
	if err != nil {
		t.Fatalf("fallback must not surface an error, got %v", err)
	}

	if len(stub.prompts) != 2 {
		t.Fatalf("expected exactly two calls, got %d", len(stub.prompts))
	}
	want := models.FallbackResumeStats()
	if len(stats.Strengths) != 1 || stats.Strengths[0] != want.Strengths[0] {
		t.Fatalf("expected placeholder strengths, got %+v", stats.Strengths)
	}
	if len(stats.Skills) != 1 || stats.Skills[0].SkillName != want.Skills[0].SkillName {
		t.Fatalf("expected placeholder skills, got %+v", stats.Skills)
	}
}

func TestEvaluateStatsUsesFirstValidResponse(t *testing.T) {
	stub := &stubGenerator{responses: []string{"```json\n" + `{
		"strengths": ["Strong Python background"],
		"weaknesses": ["No cloud experience"],
		"skills": [{"skillName": "Python", "skillLevel": 85}]
	}` + "\n```"}}
	client := newStubClient(stub)

	stats, err := client.EvaluateStats(context.Background(), "resume text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stub.prompts) != 1 {
		t.Fatalf("expected a single call for a valid response, got %d", len(stub.prompts))
	}
	if stats.Skills[0].SkillLevel != 85 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPreparationResourcesSurfacesPersistentFailure(t *testing.T) {
	stub := &stubGenerator{responses: []string{"not json", "still not json"}}
	client := newStubClient(stub)

	if _, err := client.PreparationResources(context.Background(), "job description"); err == nil {
		t.Fatalf("expected persistent malformed responses to surface an error")
	}
}
