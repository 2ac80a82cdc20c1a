package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

// PathResolver turns a classification into the absolute output directory.
type PathResolver struct {
	cfg domain.Config
}

// NewPathResolver creates a resolver over cfg.
func NewPathResolver(cfg domain.Config) *PathResolver {
	return &PathResolver{cfg: cfg}
}

// Resolve returns the target directory for kind.
//
// General content lands in the directory containing archivePath. A single
// document lands in the configured output folder; an unset folder is
// domain.ErrMissingConfiguration, never a silent default.
func (r *PathResolver) Resolve(kind domain.ContentKind, archivePath, documentEntry string) (string, error) {
	switch kind {
	case domain.KindGeneral:
		if !filepath.IsAbs(archivePath) {
			return "", fmt.Errorf("%w: archive path %q is not absolute", domain.ErrInvalidInput, archivePath)
		}
		return filepath.Dir(archivePath), nil

	case domain.KindSingleDocument:
		folder := strings.TrimSpace(r.cfg.OutputFolder)
		if folder == "" {
			return "", fmt.Errorf("%w: OUTPUT_FOLDER must be set to place document %s",
				domain.ErrMissingConfiguration, documentEntry)
		}
		return r.cfg.ResolvePath(folder), nil

	default:
		return "", fmt.Errorf("%w: unknown content kind %q", domain.ErrInvalidInput, kind)
	}
}

// Decide resolves and packages the decision for an archive.
func (r *PathResolver) Decide(
	result domain.ClassificationResult,
	archivePath string,
) (domain.ExtractionDecision, error) {
	target, err := r.Resolve(result.Kind, archivePath, result.DocumentEntry)
	if err != nil {
		return domain.ExtractionDecision{}, err
	}
	return domain.ExtractionDecision{
		TargetDirectory: target,
		SourceArchive:   archivePath,
		Kind:            result.Kind,
	}, nil
}
