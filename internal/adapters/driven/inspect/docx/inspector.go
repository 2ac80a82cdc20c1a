// Package docx inspects OOXML word-processing packages.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driven"
)

// Ensure Inspector implements the interface.
var _ driven.DocumentInspector = (*Inspector)(nil)

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
	formatDOCX   = "docx"
)

// Inspector checks that a file is a DOCX package and reads basic facts
// from it.
type Inspector struct{}

// New creates a new DOCX inspector.
func New() *Inspector {
	return &Inspector{}
}

// Inspect opens path as a DOCX package.
// A file that is not a zip, or has no main document part, is
// domain.ErrInvalidInput. Failing to read the file at all is returned as is.
func (i *Inspector) Inspect(_ context.Context, path string) (*domain.DocumentInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := zip.NewReader(f, stat.Size())
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("%w: %s is not a zip package", domain.ErrInvalidInput, path)
	}

	body, err := readPart(reader, documentPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, path, err)
	}

	paragraphs, err := countParagraphs(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: malformed %s: %v", domain.ErrInvalidInput, path, documentPart, err)
	}

	return &domain.DocumentInfo{
		Format:     formatDOCX,
		Title:      extractTitle(reader),
		Paragraphs: paragraphs,
	}, nil
}

// readPart returns the contents of the named package part.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("missing %s", name)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []struct{} `xml:"p"`
	} `xml:"body"`
}

func countParagraphs(content []byte) (int, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return 0, err
	}
	return len(doc.Body.Paragraphs), nil
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle returns the dc:title property, or "" when absent.
func extractTitle(reader *zip.Reader) string {
	content, err := readPart(reader, corePart)
	if err != nil {
		return ""
	}

	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
