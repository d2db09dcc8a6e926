package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/resumatch/backend/config"
)

// CloudStorageClient wraps Google Cloud Storage operations
type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

// NewCloudStorageClient creates a new Cloud Storage client
func NewCloudStorageClient(ctx context.Context, cfg *config.Config) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud Storage client: %w", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: cfg.ResumeBucketName,
	}, nil
}

// Close closes the Cloud Storage client
func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

// UploadResume uploads a resume file and returns its object name
func (c *CloudStorageClient) UploadResume(ctx context.Context, userID string, file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(header.Filename)
	objectName := fmt.Sprintf("resumes/%s/%d-%s%s", sanitizePathSegment(userID), time.Now().Unix(), uuid.NewString(), ext)

	obj := c.client.Bucket(c.bucketName).Object(objectName)

	wc := obj.NewWriter(ctx)
	wc.ContentType = header.Header.Get("Content-Type")
	if wc.ContentType == "" {
		wc.ContentType = getContentType(ext)
	}

	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	return objectName, nil
}

// DownloadResume returns the raw bytes of a stored resume object
func (c *CloudStorageClient) DownloadResume(ctx context.Context, objectName string) ([]byte, error) {
	rc, err := c.client.Bucket(c.bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open resume object: %w", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume object: %w", err)
	}

	return content, nil
}

func sanitizePathSegment(s string) string {
	s = strings.ReplaceAll(s, "@", "_at_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

func getContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
