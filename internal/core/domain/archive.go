package domain

import (
	"path"
	"strings"
)

// ArchiveEntry is a single file or directory inside an archive.
// RelativePath always uses forward slashes, as stored in the archive.
type ArchiveEntry struct {
	RelativePath string
	IsDirectory  bool
	SizeBytes    int64
}

// Name returns the final path element of the entry.
func (e ArchiveEntry) Name() string {
	return path.Base(strings.TrimSuffix(e.RelativePath, "/"))
}

// Ext returns the lower-cased extension of the entry, including the dot.
func (e ArchiveEntry) Ext() string {
	if e.IsDirectory {
		return ""
	}
	return strings.ToLower(path.Ext(e.RelativePath))
}

// CountFiles returns the number of non-directory entries.
func CountFiles(entries []ArchiveEntry) int {
	n := 0
	for _, e := range entries {
		if !e.IsDirectory {
			n++
		}
	}
	return n
}

// TotalSize returns the summed uncompressed size of all file entries.
func TotalSize(entries []ArchiveEntry) int64 {
	var total int64
	for _, e := range entries {
		if !e.IsDirectory {
			total += e.SizeBytes
		}
	}
	return total
}
