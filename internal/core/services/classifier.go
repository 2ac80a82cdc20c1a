package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driven"
	"github.com/Jeff-411/book-extractor/internal/logger"
)

// Classifier decides whether an archive's payload is a single recognised
// document or general content.
type Classifier struct {
	extensions []string
	inspector  driven.DocumentInspector
}

// NewClassifier creates a classifier for the given document extensions.
// inspector may be nil; when set, the single candidate must also pass
// content inspection to count as a document.
func NewClassifier(extensions []string, inspector driven.DocumentInspector) *Classifier {
	return &Classifier{
		extensions: domain.NormalizeExtensions(extensions),
		inspector:  inspector,
	}
}

// Classify classifies staged entries. stagingDir is only read when content
// inspection is enabled.
func (c *Classifier) Classify(
	ctx context.Context,
	entries []domain.ArchiveEntry,
	stagingDir string,
) (domain.ClassificationResult, error) {
	result := ClassifyEntries(entries, c.extensions)
	if !result.IsSingleDocument() || c.inspector == nil {
		return result, nil
	}

	docPath := filepath.Join(stagingDir, filepath.FromSlash(result.DocumentEntry))
	info, err := c.inspector.Inspect(ctx, docPath)
	if errors.Is(err, domain.ErrInvalidInput) {
		logger.Debug("%s has a document extension but is not a document package", result.DocumentEntry)
		return domain.ClassificationResult{Kind: domain.KindGeneral, FileCount: result.FileCount}, nil
	}
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("inspecting %s: %w", result.DocumentEntry, err)
	}

	result.Document = info
	return result, nil
}

// ClassifyEntries applies the single-document rule: exactly one
// non-directory entry whose extension (case-insensitive) is in extensions.
// Anything else, including an empty archive, is general content.
func ClassifyEntries(entries []domain.ArchiveEntry, extensions []string) domain.ClassificationResult {
	var (
		files int
		only  domain.ArchiveEntry
	)
	for _, e := range entries {
		if e.IsDirectory {
			continue
		}
		files++
		only = e
	}

	result := domain.ClassificationResult{Kind: domain.KindGeneral, FileCount: files}
	if files != 1 {
		return result
	}

	ext := only.Ext()
	for _, want := range extensions {
		if ext == want {
			result.Kind = domain.KindSingleDocument
			result.DocumentEntry = only.RelativePath
			break
		}
	}
	return result
}
