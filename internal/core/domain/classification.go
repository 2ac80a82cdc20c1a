package domain

// ContentKind is the outcome of content classification.
type ContentKind string

const (
	// KindGeneral is ordinary or mixed content, extracted beside the archive.
	KindGeneral ContentKind = "general"

	// KindSingleDocument is an archive holding exactly one recognised
	// document, routed to the configured output folder.
	KindSingleDocument ContentKind = "single_document"
)

// IsValid returns true if the kind is recognised.
func (k ContentKind) IsValid() bool {
	return k == KindGeneral || k == KindSingleDocument
}

// String returns the string representation.
func (k ContentKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k ContentKind) Description() string {
	switch k {
	case KindGeneral:
		return "General content"
	case KindSingleDocument:
		return "Single document"
	default:
		return "Unknown"
	}
}

// ClassificationResult describes what an archive contains.
// Kind is KindSingleDocument only if exactly one non-directory entry exists
// and its extension is a recognised document extension.
type ClassificationResult struct {
	Kind ContentKind

	// DocumentEntry is the relative path of the document for KindSingleDocument.
	DocumentEntry string

	// FileCount is the number of non-directory entries seen.
	FileCount int

	// Document is set when the single document's content was verified.
	Document *DocumentInfo
}

// IsSingleDocument reports whether the result routes to the output folder.
func (r ClassificationResult) IsSingleDocument() bool {
	return r.Kind == KindSingleDocument
}

// DocumentInfo is what content inspection learns about a document file.
type DocumentInfo struct {
	// Format is the detected package format, e.g. "docx".
	Format string

	// Title comes from document properties when present.
	Title string

	// Paragraphs is the number of body paragraphs.
	Paragraphs int
}
