package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/resumatch/backend/config"
	"github.com/resumatch/backend/models"
)

const (
	usersCollection         = "users"
	jobsCollection          = "jobs"
	resumeEntriesCollection = "resumeEntries"
	matchRunsCollection     = "matchRuns"
)

// ErrUserExists is returned when registering an already-known email.
var ErrUserExists = errors.New("user with this email already exists")

// ErrUserNotFound is returned when a user lookup misses.
var ErrUserNotFound = errors.New("user not found")

// FirestoreClient wraps Firestore operations
type FirestoreClient struct {
	client *firestore.Client
}

// NewFirestoreClient creates a new Firestore client
func NewFirestoreClient(ctx context.Context, cfg *config.Config) (*FirestoreClient, error) {
	client, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &FirestoreClient{client: client}, nil
}

// Close closes the Firestore client
func (f *FirestoreClient) Close() error {
	return f.client.Close()
}

// CreateUser creates a new user in Firestore
func (f *FirestoreClient) CreateUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	// Use email as document ID for uniqueness
	docRef := f.client.Collection(usersCollection).Doc(user.Email)

	_, err := docRef.Get(ctx)
	if err == nil {
		return ErrUserExists
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to check user existence: %w", err)
	}

	if _, err := docRef.Set(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = user.Email
	return nil
}

// GetUserByEmail retrieves a user by email
func (f *FirestoreClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	doc, err := f.client.Collection(usersCollection).Doc(email).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user data: %w", err)
	}

	user.ID = doc.Ref.ID
	return &user, nil
}

// CreateJob adds a job posting to the catalog. Jobs with the same title
// and location are rejected as duplicates.
func (f *FirestoreClient) CreateJob(ctx context.Context, job *models.Job) error {
	iter := f.client.Collection(jobsCollection).
		Where("title", "==", job.Title).
		Where("location", "==", job.Location).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err == nil {
		return errors.New("job with the same title and location already exists")
	} else if err != iterator.Done {
		return fmt.Errorf("failed to check job existence: %w", err)
	}

	if job.DatePosted.IsZero() {
		job.DatePosted = time.Now()
	}

	docRef, _, err := f.client.Collection(jobsCollection).Add(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	job.ID = docRef.ID
	return nil
}

// AllJobs returns every job in the catalog, in query order.
func (f *FirestoreClient) AllJobs(ctx context.Context) ([]models.Job, error) {
	iter := f.client.Collection(jobsCollection).Documents(ctx)
	defer iter.Stop()

	var jobs []models.Job
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list jobs: %w", err)
		}

		var job models.Job
		if err := doc.DataTo(&job); err != nil {
			return nil, fmt.Errorf("failed to parse job data: %w", err)
		}
		job.ID = doc.Ref.ID
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// JobsByIDs resolves an explicit job id set. Unknown ids are ignored;
// the order of the input ids is preserved for the known ones.
func (f *FirestoreClient) JobsByIDs(ctx context.Context, ids []string) ([]models.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, f.client.Collection(jobsCollection).Doc(id))
	}

	docs, err := f.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jobs: %w", err)
	}

	var jobs []models.Job
	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		var job models.Job
		if err := doc.DataTo(&job); err != nil {
			return nil, fmt.Errorf("failed to parse job data: %w", err)
		}
		job.ID = doc.Ref.ID
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// SearchJobs filters the catalog. Experience level matches exactly;
// title and location are case-insensitive substring matches applied
// client-side since Firestore has no contains operator.
func (f *FirestoreClient) SearchJobs(ctx context.Context, filter models.JobSearchFilter) ([]models.Job, error) {
	query := f.client.Collection(jobsCollection).Query
	if filter.ExperienceLevel != "" {
		query = query.Where("experienceLevel", "==", filter.ExperienceLevel)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var jobs []models.Job
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to search jobs: %w", err)
		}

		var job models.Job
		if err := doc.DataTo(&job); err != nil {
			return nil, fmt.Errorf("failed to parse job data: %w", err)
		}
		job.ID = doc.Ref.ID

		if !containsFold(job.Title, filter.Title) || !containsFold(job.Location, filter.Location) {
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// DeleteJob removes a job posting from the catalog
func (f *FirestoreClient) DeleteJob(ctx context.Context, id string) error {
	if _, err := f.client.Collection(jobsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// CreateResumeEntry records an uploaded resume document
func (f *FirestoreClient) CreateResumeEntry(ctx context.Context, entry *models.ResumeEntry) error {
	entry.UploadedAt = time.Now()

	docRef, _, err := f.client.Collection(resumeEntriesCollection).Add(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create resume entry: %w", err)
	}

	entry.ID = docRef.ID
	return nil
}

// AllResumeEntries returns every resume entry across all users.
func (f *FirestoreClient) AllResumeEntries(ctx context.Context) ([]models.ResumeEntry, error) {
	return f.resumeEntries(ctx, f.client.Collection(resumeEntriesCollection).Documents(ctx))
}

// ResumeEntriesByUser returns a single user's resume entries.
func (f *FirestoreClient) ResumeEntriesByUser(ctx context.Context, userID string) ([]models.ResumeEntry, error) {
	iter := f.client.Collection(resumeEntriesCollection).Where("userId", "==", userID).Documents(ctx)
	return f.resumeEntries(ctx, iter)
}

// ResumeEntriesByIDs resolves an explicit resume entry id set, ignoring
// unknown ids.
func (f *FirestoreClient) ResumeEntriesByIDs(ctx context.Context, ids []string) ([]models.ResumeEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, f.client.Collection(resumeEntriesCollection).Doc(id))
	}

	docs, err := f.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resume entries: %w", err)
	}

	var entries []models.ResumeEntry
	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		var entry models.ResumeEntry
		if err := doc.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("failed to parse resume entry: %w", err)
		}
		entry.ID = doc.Ref.ID
		entries = append(entries, entry)
	}

	return entries, nil
}

// UpdateResumeStats stores the standalone analysis on a resume entry
func (f *FirestoreClient) UpdateResumeStats(ctx context.Context, entryID string, stats *models.ResumeStats) error {
	_, err := f.client.Collection(resumeEntriesCollection).Doc(entryID).Update(ctx, []firestore.Update{
		{Path: "stats", Value: stats},
	})
	if err != nil {
		return fmt.Errorf("failed to update resume stats: %w", err)
	}
	return nil
}

func (f *FirestoreClient) resumeEntries(_ context.Context, iter *firestore.DocumentIterator) ([]models.ResumeEntry, error) {
	defer iter.Stop()

	var entries []models.ResumeEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list resume entries: %w", err)
		}

		var entry models.ResumeEntry
		if err := doc.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("failed to parse resume entry: %w", err)
		}
		entry.ID = doc.Ref.ID
		entries = append(entries, entry)
	}

	return entries, nil
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
