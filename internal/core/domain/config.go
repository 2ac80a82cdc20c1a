package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// CollisionPolicy decides what happens when a staged file would land on an
// existing file during finalization.
type CollisionPolicy string

// Available collision policies.
const (
	// CollisionOverwrite replaces the existing file.
	CollisionOverwrite CollisionPolicy = "overwrite"

	// CollisionUniquify keeps both, writing "name (1).ext", "name (2).ext", ...
	CollisionUniquify CollisionPolicy = "uniquify"

	// CollisionFail aborts the job with ErrFinalizeCollision.
	CollisionFail CollisionPolicy = "fail"
)

// IsValid returns true if the policy is recognised.
func (p CollisionPolicy) IsValid() bool {
	switch p {
	case CollisionOverwrite, CollisionUniquify, CollisionFail:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p CollisionPolicy) String() string {
	return string(p)
}

// AllCollisionPolicies returns every policy in display order.
func AllCollisionPolicies() []CollisionPolicy {
	return []CollisionPolicy{CollisionOverwrite, CollisionUniquify, CollisionFail}
}

// EnvRoot overrides the application root directory.
const EnvRoot = "BOOK_EXTRACTOR_ROOT"

// Defaults.
const (
	DefaultLogDir          = "logs"
	DefaultCombinedLogName = "combined.log"
	DefaultErrorLogName    = "error.log"
	DefaultHistoryPath     = "data/history.db"
	DefaultWatchSettle     = 750 * time.Millisecond
	DefaultDocumentExt     = ".docx"
	DefaultCollision       = CollisionOverwrite
)

// Config holds every setting an invocation needs, resolved once at startup.
// Relative paths are resolved against RootDir by the accessor methods.
type Config struct {
	// RootDir is the application root. Always absolute.
	RootDir string

	// OutputFolder is where single documents are routed. Empty means unset.
	OutputFolder string

	// LogDir holds combined.log and error.log.
	LogDir string

	// StagingDir is where archives are unpacked before finalization.
	// Empty means a temporary directory beside the archive.
	StagingDir string

	CollisionPolicy CollisionPolicy

	// DocumentExtensions are recognised single-document extensions,
	// lower-cased and dot-prefixed.
	DocumentExtensions []string

	// VerifyDocuments additionally requires the single document to open as a
	// word-processing package.
	VerifyDocuments bool

	HistoryEnabled bool
	HistoryPath    string

	// WatchSettle is how long a watched archive must stay unchanged before
	// it is extracted.
	WatchSettle time.Duration
}

// DefaultConfig returns a Config with defaults applied for rootDir.
func DefaultConfig(rootDir string) Config {
	return Config{
		RootDir:            rootDir,
		LogDir:             DefaultLogDir,
		CollisionPolicy:    DefaultCollision,
		DocumentExtensions: []string{DefaultDocumentExt},
		HistoryPath:        DefaultHistoryPath,
		WatchSettle:        DefaultWatchSettle,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.RootDir == "" || !filepath.IsAbs(c.RootDir) {
		return fmt.Errorf("%w: root directory must be absolute, got %q", ErrInvalidInput, c.RootDir)
	}
	if !c.CollisionPolicy.IsValid() {
		return fmt.Errorf("%w: unknown collision policy %q (want one of %v)",
			ErrInvalidInput, c.CollisionPolicy, AllCollisionPolicies())
	}
	if len(c.DocumentExtensions) == 0 {
		return fmt.Errorf("%w: at least one document extension is required", ErrInvalidInput)
	}
	if c.WatchSettle < 0 {
		return fmt.Errorf("%w: watch settle must not be negative", ErrInvalidInput)
	}
	return nil
}

// ResolvePath makes p absolute against RootDir. Absolute paths are cleaned
// and returned unchanged. Empty input returns "".
func (c *Config) ResolvePath(p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.RootDir, p)
}

// CombinedLogPath returns the absolute path of the combined trace log.
func (c *Config) CombinedLogPath() string {
	return filepath.Join(c.ResolvePath(c.logDir()), DefaultCombinedLogName)
}

// ErrorLogPath returns the absolute path of the error log.
func (c *Config) ErrorLogPath() string {
	return filepath.Join(c.ResolvePath(c.logDir()), DefaultErrorLogName)
}

// HistoryDBPath returns the absolute path of the history database.
func (c *Config) HistoryDBPath() string {
	p := c.HistoryPath
	if p == "" {
		p = DefaultHistoryPath
	}
	return c.ResolvePath(p)
}

func (c *Config) logDir() string {
	if c.LogDir == "" {
		return DefaultLogDir
	}
	return c.LogDir
}

// NormalizeExtensions lower-cases and dot-prefixes each extension,
// dropping blanks and duplicates.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}
