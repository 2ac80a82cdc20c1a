package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/logger"
)

// Finalizer moves staged output into its target directory.
//
// General content keeps the archive's relative layout under the target.
// A single document is placed directly in the target by its base name.
// Existing directories are merged; existing files follow the collision policy.
type Finalizer struct {
	policy domain.CollisionPolicy
}

// NewFinalizer creates a finalizer with the given collision policy.
func NewFinalizer(policy domain.CollisionPolicy) *Finalizer {
	if !policy.IsValid() {
		policy = domain.DefaultCollision
	}
	return &Finalizer{policy: policy}
}

// Policy returns the collision policy in use.
func (f *Finalizer) Policy() domain.CollisionPolicy {
	return f.policy
}

// placement is one pending move from staging to its destination.
type placement struct {
	src string
	dst string
}

// Finalize places staged entries in decision.TargetDirectory and returns
// the final file paths in archive order. The source archive itself is never
// replaced: an entry landing on it gets a unique name whatever the policy.
// On failure, files this call created are removed best-effort; files it
// overwrote cannot be restored.
func (f *Finalizer) Finalize(
	_ context.Context,
	stagingDir string,
	entries []domain.ArchiveEntry,
	result domain.ClassificationResult,
	decision domain.ExtractionDecision,
) ([]string, error) {
	targetDir := decision.TargetDirectory
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", domain.ErrFinalizeIO, targetDir, err)
	}

	var plan []placement
	if result.IsSingleDocument() {
		rel := filepath.FromSlash(result.DocumentEntry)
		plan = append(plan, placement{
			src: filepath.Join(stagingDir, rel),
			dst: filepath.Join(targetDir, filepath.Base(rel)),
		})
	} else {
		for _, e := range entries {
			rel := filepath.FromSlash(strings.TrimSuffix(e.RelativePath, "/"))
			if e.IsDirectory {
				if err := ensureDir(filepath.Join(targetDir, rel)); err != nil {
					return nil, err
				}
				continue
			}
			plan = append(plan, placement{
				src: filepath.Join(stagingDir, rel),
				dst: filepath.Join(targetDir, rel),
			})
		}
	}

	source := statSource(decision.SourceArchive)

	placed := make([]string, 0, len(plan))
	var created []string
	for _, p := range plan {
		dst, isNew, err := f.place(p, source)
		if err != nil {
			rollback(created)
			return nil, err
		}
		if isNew {
			created = append(created, dst)
		}
		placed = append(placed, dst)
	}
	return placed, nil
}

// place moves one file, applying the collision policy. It returns the
// final destination and whether the file did not exist before.
func (f *Finalizer) place(p placement, source os.FileInfo) (string, bool, error) {
	if err := ensureDir(filepath.Dir(p.dst)); err != nil {
		return "", false, err
	}

	info, err := os.Lstat(p.dst)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := moveFile(p.src, p.dst); err != nil {
			return "", false, err
		}
		return p.dst, true, nil
	case err != nil:
		return "", false, fmt.Errorf("%w: checking %s: %v", domain.ErrFinalizeIO, p.dst, err)
	case source != nil && os.SameFile(info, source):
		logger.Debug("%s is the archive being extracted, renaming the entry", p.dst)
		return placeUnique(p)
	case info.IsDir():
		if f.policy != domain.CollisionUniquify {
			return "", false, fmt.Errorf("%w: %s is an existing directory", domain.ErrFinalizeCollision, p.dst)
		}
		return placeUnique(p)
	}

	switch f.policy {
	case domain.CollisionFail:
		return "", false, fmt.Errorf("%w: %s already exists", domain.ErrFinalizeCollision, p.dst)
	case domain.CollisionUniquify:
		return placeUnique(p)
	default:
		logger.Debug("overwriting %s", p.dst)
		if err := moveFile(p.src, p.dst); err != nil {
			return "", false, err
		}
		return p.dst, false, nil
	}
}

// placeUnique moves p.src to the first free "name (n).ext" beside p.dst.
func placeUnique(p placement) (string, bool, error) {
	dst, err := uniquePath(p.dst)
	if err != nil {
		return "", false, err
	}
	if err := moveFile(p.src, dst); err != nil {
		return "", false, err
	}
	return dst, true, nil
}

// statSource returns the archive's file info, or nil if it cannot be read.
func statSource(archivePath string) os.FileInfo {
	if archivePath == "" {
		return nil
	}
	info, err := os.Stat(archivePath)
	if err != nil {
		return nil
	}
	return info
}

// ensureDir creates dir, failing with a collision if a file is in the way.
// A file is never moved aside to make room for a directory.
func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s exists and is not a directory", domain.ErrFinalizeCollision, dir)
		}
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", domain.ErrFinalizeIO, dir, err)
	}
	return nil
}

// uniquePath returns "name (n).ext" for the smallest n that does not exist.
func uniquePath(path string) (string, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)

	for n := 1; n < 10000; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no free name for %s", domain.ErrFinalizeCollision, path)
}

// moveFile renames src to dst, falling back to copy and remove when the
// rename crosses volumes.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("%w: moving %s: %v", domain.ErrFinalizeIO, dst, err)
	}
	if err := os.Remove(src); err != nil {
		logger.Warn("could not remove staged file %s: %v", src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// rollback removes files created by a failed finalize, newest first.
func rollback(created []string) {
	for i := len(created) - 1; i >= 0; i-- {
		if err := os.Remove(created[i]); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("rollback: could not remove %s: %v", created[i], err)
		}
	}
}
