// Package extract turns stored resume documents into plain text for
// the evaluator.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/resumatch/backend/models"
)

// ObjectDownloader fetches raw document bytes from object storage.
type ObjectDownloader interface {
	DownloadResume(ctx context.Context, objectName string) ([]byte, error)
}

// DocumentExtractor loads a resume entry's file and extracts its text.
type DocumentExtractor struct {
	downloader ObjectDownloader
}

// NewDocumentExtractor creates a document extractor backed by object
// storage.
func NewDocumentExtractor(downloader ObjectDownloader) *DocumentExtractor {
	return &DocumentExtractor{downloader: downloader}
}

// LoadText downloads the entry's file and extracts its text content
// based on the file extension.
func (e *DocumentExtractor) LoadText(ctx context.Context, entry models.ResumeEntry) (string, error) {
	content, err := e.downloader.DownloadResume(ctx, entry.StoragePath)
	if err != nil {
		return "", fmt.Errorf("failed to download resume %s: %w", entry.ID, err)
	}

	text, err := ExtractText(content, entry.Filename)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", entry.Filename, err)
	}

	return text, nil
}

// ExtractText extracts plain text from document bytes based on the
// filename extension. Unknown extensions are treated as plain text.
func ExtractText(content []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(content)
	default:
		return CleanText(string(content)), nil
	}
}

// IsSupportedFormat checks if the file format is supported
func IsSupportedFormat(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt":
		return true
	default:
		return false
	}
}

func extractPDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := CleanText(textBuilder.String())
	if text == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}

	return text, nil
}

// CleanText trims each line and drops empty ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var cleanedLines []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
