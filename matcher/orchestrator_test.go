package matcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/resumatch/backend/models"
)

type fakeJobCatalog struct {
	jobs []models.Job
	err  error
}

func (f *fakeJobCatalog) AllJobs(_ context.Context) ([]models.Job, error) {
	return f.jobs, f.err
}

func (f *fakeJobCatalog) JobsByIDs(_ context.Context, ids []string) ([]models.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Job
	for _, job := range f.jobs {
		for _, id := range ids {
			if job.ID == id {
				out = append(out, job)
			}
		}
	}
	return out, nil
}

type fakeResumeCatalog struct {
	entries []models.ResumeEntry
	err     error
}

func (f *fakeResumeCatalog) AllResumeEntries(_ context.Context) ([]models.ResumeEntry, error) {
	return f.entries, f.err
}

func (f *fakeResumeCatalog) ResumeEntriesByIDs(_ context.Context, ids []string) ([]models.ResumeEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ResumeEntry
	for _, entry := range f.entries {
		for _, id := range ids {
			if entry.ID == id {
				out = append(out, entry)
			}
		}
	}
	return out, nil
}

type fakeStore struct {
	records   map[string]models.JobMatchRecord // key userID/resumeID/jobID
	appendErr error
	existsErr error
	appends   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]models.JobMatchRecord)}
}

func storeKey(userID, resumeEntryID, jobID string) string {
	return fmt.Sprintf("%s/%s/%s", userID, resumeEntryID, jobID)
}

func (f *fakeStore) Exists(_ context.Context, userID, resumeEntryID, jobID string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.records[storeKey(userID, resumeEntryID, jobID)]
	return ok, nil
}

func (f *fakeStore) Append(_ context.Context, userID string, group models.ResumeMatchGroup) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appends++
	for _, record := range group.Jobs {
		key := storeKey(userID, group.ResumeEntryID, record.JobID)
		if _, ok := f.records[key]; ok {
			continue
		}
		f.records[key] = record
	}
	return nil
}

type fakeEvaluator struct {
	calls  int
	result models.EvaluationResult
	err    error
}

func (f *fakeEvaluator) EvaluateFit(_ context.Context, _, _ string) (models.EvaluationResult, error) {
	f.calls++
	if f.err != nil {
		return models.EvaluationResult{}, f.err
	}
	return f.result, nil
}

type fakeLoader struct {
	texts map[string]string
	err   error
}

func (f *fakeLoader) LoadText(_ context.Context, entry models.ResumeEntry) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.texts[entry.ID], nil
}

type fakeLimiter struct {
	admits int
}

func (f *fakeLimiter) Admit(_ context.Context) error {
	f.admits++
	return nil
}

func fitResult(composite float64) models.EvaluationResult {
	return models.EvaluationResult{
		Scores: models.EvaluationScores{
			Relevance:    80,
			Skills:       75,
			Experience:   70,
			Presentation: 90,
		},
		CompositeScore: composite,
		Recommendation: "Highlight backend projects.",
		IsFit:          composite >= DefaultFitThreshold,
	}
}

type orchestratorFixture struct {
	jobs      *fakeJobCatalog
	resumes   *fakeResumeCatalog
	store     *fakeStore
	evaluator *fakeEvaluator
	loader    *fakeLoader
	limiter   *fakeLimiter
	publisher *capturingPublisher
	orch      *Orchestrator
}

func newFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		jobs: &fakeJobCatalog{jobs: []models.Job{
			{ID: "j1", Title: "Backend Engineer", Company: "Acme", Description: "Need Python..."},
		}},
		resumes: &fakeResumeCatalog{entries: []models.ResumeEntry{
			{ID: "r1", UserID: "u1", Filename: "r1.pdf"},
		}},
		store:     newFakeStore(),
		evaluator: &fakeEvaluator{result: fitResult(82)},
		loader:    &fakeLoader{texts: map[string]string{"r1": "Python developer..."}},
		limiter:   &fakeLimiter{},
		publisher: &capturingPublisher{},
	}
	f.orch = NewOrchestrator(f.jobs, f.resumes, f.store, f.evaluator, f.loader, f.limiter, f.publisher, zap.NewNop())
	return f
}

func allJobsRequest() Request {
	return Request{UserID: "u1", SelectAllJobs: true, SelectAllResumes: true}
}

func TestRunEvaluatesAndPersistsNewPair(t *testing.T) {
	f := newFixture()

	groups, err := f.orch.Run(context.Background(), allJobsRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.evaluator.calls != 1 {
		t.Fatalf("expected one evaluator call, got %d", f.evaluator.calls)
	}
	if f.limiter.admits != 1 {
		t.Fatalf("expected one admission, got %d", f.limiter.admits)
	}
	if len(groups) != 1 || len(groups[0].Jobs) != 1 {
		t.Fatalf("expected one new group with one record, got %+v", groups)
	}
	if _, ok := f.store.records[storeKey("u1", "r1", "j1")]; !ok {
		t.Fatalf("expected record persisted for u1/r1/j1")
	}

	record := groups[0].Jobs[0]
	if !strings.HasPrefix(record.MatchResultText, "Good fit for job Backend Engineer") {
		t.Fatalf("unexpected match text: %q", record.MatchResultText)
	}
}

func TestRunSecondIdenticalRunIsIdempotent(t *testing.T) {
	f := newFixture()

	if _, err := f.orch.Run(context.Background(), allJobsRequest()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	f.publisher.events = nil
	groups, err := f.orch.Run(context.Background(), allJobsRequest())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if f.evaluator.calls != 1 {
		t.Fatalf("expected no further evaluator calls, got %d", f.evaluator.calls)
	}
	if len(groups) != 0 {
		t.Fatalf("expected no new records on second run, got %+v", groups)
	}
	if len(f.store.records) != 1 {
		t.Fatalf("expected exactly one stored record, got %d", len(f.store.records))
	}

	var sawExists bool
	for _, ev := range f.publisher.Events() {
		if ev.name == EventProgress && strings.Contains(ev.payload.Message, "already exists") {
			sawExists = true
		}
	}
	if !sawExists {
		t.Fatalf("expected an 'already exists' progress event")
	}
}

func TestRunEmptyJobUniverse(t *testing.T) {
	f := newFixture()
	f.jobs.jobs = nil

	_, err := f.orch.Run(context.Background(), allJobsRequest())

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Message != "No jobs found." {
		t.Fatalf("unexpected message: %q", notFound.Message)
	}
	if f.evaluator.calls != 0 {
		t.Fatalf("expected no evaluator calls, got %d", f.evaluator.calls)
	}
}

func TestRunEmptyResumeUniverse(t *testing.T) {
	f := newFixture()
	f.resumes.entries = nil

	_, err := f.orch.Run(context.Background(), allJobsRequest())

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Message != "No resumes found." {
		t.Fatalf("unexpected message: %q", notFound.Message)
	}
}

func TestRunMissingUserID(t *testing.T) {
	f := newFixture()

	_, err := f.orch.Run(context.Background(), Request{SelectAllJobs: true, SelectAllResumes: true})

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRunEvaluatorFailureDegradesToFallback(t *testing.T) {
	f := newFixture()
	f.evaluator.err = errors.New("model unavailable")

	groups, err := f.orch.Run(context.Background(), allJobsRequest())
	if err != nil {
		t.Fatalf("run should absorb evaluation failures, got %v", err)
	}

	if len(groups) != 1 || len(groups[0].Jobs) != 1 {
		t.Fatalf("expected one fallback record, got %+v", groups)
	}

	result := groups[0].Jobs[0].EvaluationResult
	if result.CompositeScore != 0 || result.IsFit {
		t.Fatalf("expected zero-valued fallback, got %+v", result)
	}
	if result.Scores != (models.EvaluationScores{}) {
		t.Fatalf("expected all sub-scores zero, got %+v", result.Scores)
	}
}

func TestRunClassificationBoundary(t *testing.T) {
	cases := []struct {
		composite float64
		good      bool
	}{
		{70, true},
		{69, false},
	}

	for _, tc := range cases {
		f := newFixture()
		f.evaluator.result = fitResult(tc.composite)

		groups, err := f.orch.Run(context.Background(), allJobsRequest())
		if err != nil {
			t.Fatalf("run failed for composite %v: %v", tc.composite, err)
		}

		text := groups[0].Jobs[0].MatchResultText
		if tc.good && !strings.HasPrefix(text, "Good fit") {
			t.Fatalf("composite %v should classify as good fit, got %q", tc.composite, text)
		}
		if !tc.good && !strings.HasPrefix(text, "Not a good fit") {
			t.Fatalf("composite %v should classify as not a good fit, got %q", tc.composite, text)
		}
	}
}

func TestRunStorageFailureAborts(t *testing.T) {
	f := newFixture()
	f.store.appendErr = errors.New("connection reset")

	_, err := f.orch.Run(context.Background(), allJobsRequest())

	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestRunUnreadableResumeIsSkipped(t *testing.T) {
	f := newFixture()
	f.loader.err = errors.New("corrupt pdf")

	groups, err := f.orch.Run(context.Background(), allJobsRequest())
	if err != nil {
		t.Fatalf("unreadable resume should not abort the run, got %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %+v", groups)
	}
	if f.evaluator.calls != 0 {
		t.Fatalf("expected no evaluator calls for unreadable resume")
	}
}

func TestRunEventSequence(t *testing.T) {
	f := newFixture()

	if _, err := f.orch.Run(context.Background(), allJobsRequest()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	events := f.publisher.Events()
	if len(events) != 3 {
		t.Fatalf("expected progress, progress-batch and done events, got %d", len(events))
	}
	if events[0].name != EventProgress || events[1].name != EventProgressBatch || events[2].name != EventDone {
		t.Fatalf("unexpected event order: %v %v %v", events[0].name, events[1].name, events[2].name)
	}
	if events[2].payload.Results == nil {
		t.Fatalf("done event should carry the run results")
	}
}

func TestRunDoneEventCarriesEmptyResultsWhenAllPairsExist(t *testing.T) {
	f := newFixture()

	if _, err := f.orch.Run(context.Background(), allJobsRequest()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	f.publisher.events = nil
	if _, err := f.orch.Run(context.Background(), allJobsRequest()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	events := f.publisher.Events()
	done := events[len(events)-1]
	if done.name != EventDone {
		t.Fatalf("expected final event to be done, got %q", done.name)
	}

	groups, ok := done.payload.Results.([]models.ResumeMatchGroup)
	if !ok || groups == nil {
		t.Fatalf("done event must carry a results array, got %#v", done.payload.Results)
	}
	if len(groups) != 0 {
		t.Fatalf("expected an empty results array, got %+v", groups)
	}
}

func TestClassifyMatchAppendsRecommendation(t *testing.T) {
	result := fitResult(55)
	text := classifyMatch("Data Engineer", result, 70)

	if !strings.Contains(text, "55.00%") {
		t.Fatalf("expected two-decimal score rendering, got %q", text)
	}
	if !strings.HasSuffix(text, result.Recommendation) {
		t.Fatalf("expected recommendation appended, got %q", text)
	}
}
