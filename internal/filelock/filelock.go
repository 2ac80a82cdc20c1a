// Package filelock provides cross-process mutual exclusion on a sidecar
// lock file. It is used to serialise appends to the trace logs when several
// extractions run at once.
package filelock

import (
	"fmt"
	"os"
)

// Suffix is appended to a guarded file's path to name its lock file.
const Suffix = ".lock"

// FileLock is an exclusive lock held on a lock file.
// A FileLock is not safe for concurrent use by multiple goroutines;
// create one per critical section.
type FileLock struct {
	path string
	file *os.File
}

// New creates a FileLock on the lock file at path. The file is created on
// first Lock.
func New(path string) *FileLock {
	return &FileLock{path: path}
}

// For creates a FileLock guarding target, using target+Suffix as the lock file.
func For(target string) *FileLock {
	return New(target + Suffix)
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock acquires the exclusive lock, blocking until it is available.
func (fl *FileLock) Lock() error {
	f, err := os.OpenFile(fl.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := lockFile(f, true); err != nil {
		_ = f.Close()
		return fmt.Errorf("lock %s: %w", fl.path, err)
	}
	fl.file = f
	return nil
}

// TryLock attempts to acquire the lock without blocking.
// Returns false if the lock is held elsewhere.
func (fl *FileLock) TryLock() (bool, error) {
	f, err := os.OpenFile(fl.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return false, fmt.Errorf("open lock file: %w", err)
	}

	if err := lockFile(f, false); err != nil {
		_ = f.Close()
		if isContended(err) {
			return false, nil
		}
		return false, fmt.Errorf("lock %s: %w", fl.path, err)
	}
	fl.file = f
	return true, nil
}

// Unlock releases the lock and closes the lock file. Unlocking a FileLock
// that is not held is a no-op.
func (fl *FileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}
	f := fl.file
	fl.file = nil

	if err := unlockFile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("unlock %s: %w", fl.path, err)
	}
	return f.Close()
}
