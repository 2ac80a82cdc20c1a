// Package dotenv provides an environment source backed by the process
// environment and a .env file in the application root.
package dotenv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/subosito/gotenv"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.EnvSource = (*Source)(nil)

// FileName is the dotenv file name inside the application root.
const FileName = ".env"

// OriginProcess is reported for values taken from the process environment.
const OriginProcess = "env"

// Source resolves variables from the process environment first, then from
// the .env file. The process environment is never modified.
type Source struct {
	path      string
	file      gotenv.Env
	lookupEnv func(string) (string, bool)
}

// Load reads <rootDir>/.env. A missing file yields a source backed by the
// process environment only.
func Load(rootDir string) (*Source, error) {
	path := filepath.Join(rootDir, FileName)

	vars, err := gotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		vars = gotenv.Env{}
	} else if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrInvalidInput, path, err)
	}

	return &Source{
		path:      path,
		file:      vars,
		lookupEnv: os.LookupEnv,
	}, nil
}

// Path returns the .env file path.
func (s *Source) Path() string {
	return s.path
}

// Lookup returns the value for key. A non-empty process variable wins over
// the file.
func (s *Source) Lookup(key string) (string, bool) {
	if v, ok := s.lookupEnv(key); ok && v != "" {
		return v, true
	}
	v, ok := s.file[key]
	return v, ok
}

// Origin describes where Lookup finds key: "env", the .env path, or "".
func (s *Source) Origin(key string) string {
	if v, ok := s.lookupEnv(key); ok && v != "" {
		return OriginProcess
	}
	if _, ok := s.file[key]; ok {
		return s.path
	}
	return ""
}
