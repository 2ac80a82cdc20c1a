// Package zipfile reads zip-format archives for extraction.
package zipfile

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ArchiveReader = (*Reader)(nil)

// Reader implements driven.ArchiveReader over archive/zip.
type Reader struct{}

// NewReader creates a zip archive reader.
func NewReader() *Reader {
	return &Reader{}
}

// List returns the archive's entries in archive order. When a name occurs
// more than once, only the last occurrence is kept.
func (r *Reader) List(_ context.Context, archivePath string) ([]domain.ArchiveEntry, error) {
	zr, err := open(archivePath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	entries := make([]domain.ArchiveEntry, 0, len(zr.File))
	for _, f := range zr.File {
		entry, ok, err := entryFor(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrArchiveCorrupt, archivePath, err)
		}
		if ok {
			entries = append(entries, entry)
		}
	}
	return dedupe(entries), nil
}

// Extract writes every entry under stagingDir. Cancellation is checked
// between entries. A repeated name is written again over the earlier copy,
// so the staged file and the returned entry both reflect the last one.
func (r *Reader) Extract(ctx context.Context, archivePath, stagingDir string) ([]domain.ArchiveEntry, error) {
	zr, err := open(archivePath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	entries := make([]domain.ArchiveEntry, 0, len(zr.File))
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, ok, err := entryFor(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrArchiveCorrupt, archivePath, err)
		}
		if !ok {
			continue
		}

		dest := filepath.Join(stagingDir, filepath.FromSlash(entry.RelativePath))
		if entry.IsDirectory {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return nil, fmt.Errorf("%w: creating %s: %v", domain.ErrFinalizeIO, dest, err)
			}
		} else if err := writeEntry(f, dest); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return dedupe(entries), nil
}

// dedupe drops all but the last entry for each relative path, keeping the
// survivors in archive order.
func dedupe(entries []domain.ArchiveEntry) []domain.ArchiveEntry {
	last := make(map[string]int, len(entries))
	for i, e := range entries {
		last[e.RelativePath] = i
	}
	if len(last) == len(entries) {
		return entries
	}

	out := make([]domain.ArchiveEntry, 0, len(last))
	for i, e := range entries {
		if last[e.RelativePath] == i {
			out = append(out, e)
		}
	}
	return out
}

// open opens the archive, mapping failures onto the domain taxonomy.
func open(archivePath string) (*zip.ReadCloser, error) {
	zr, err := zip.OpenReader(archivePath)
	switch {
	case err == nil:
		return zr, nil
	case errors.Is(err, zip.ErrInsecurePath):
		zr.Close()
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrArchiveCorrupt, archivePath, err)
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrArchiveNotFound, archivePath, err)
	default:
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrArchiveCorrupt, archivePath, err)
	}
}

// entryFor converts a zip header into an entry with a safe relative path.
// The archive's root directory entry, if any, is skipped.
func entryFor(f *zip.File) (domain.ArchiveEntry, bool, error) {
	rel, err := safeRelPath(f.Name)
	if err != nil {
		return domain.ArchiveEntry{}, false, err
	}
	if rel == "." {
		return domain.ArchiveEntry{}, false, nil
	}

	isDir := f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") || strings.HasSuffix(f.Name, `\`)
	entry := domain.ArchiveEntry{
		RelativePath: rel,
		IsDirectory:  isDir,
	}
	if !isDir {
		entry.SizeBytes = int64(f.UncompressedSize64)
	}
	return entry, true, nil
}

// safeRelPath normalises an entry name to a clean forward-slash path and
// rejects names that would escape the extraction root.
func safeRelPath(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if name == "" {
		return "", errors.New("entry with empty name")
	}
	if path.IsAbs(name) || hasVolume(name) {
		return "", fmt.Errorf("entry %q has an absolute path", name)
	}

	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("entry %q escapes the extraction root", name)
	}
	return clean, nil
}

// hasVolume reports whether name starts with a drive letter such as "C:".
func hasVolume(name string) bool {
	return len(name) >= 2 && name[1] == ':' &&
		(('a' <= name[0] && name[0] <= 'z') || ('A' <= name[0] && name[0] <= 'Z'))
}

// writeEntry decompresses one file entry to dest.
func writeEntry(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", domain.ErrFinalizeIO, filepath.Dir(dest), err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: opening entry %s: %v", domain.ErrArchiveCorrupt, f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", domain.ErrFinalizeIO, dest, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		// Reads fail on bad compressed data or checksum; writes fail on disk.
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("%w: writing %s: %v", domain.ErrFinalizeIO, dest, err)
		}
		return fmt.Errorf("%w: decompressing entry %s: %v", domain.ErrArchiveCorrupt, f.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: writing %s: %v", domain.ErrFinalizeIO, dest, err)
	}
	return nil
}
