// Package domain defines the core business entities for book-extractor.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ExtractionJob: One request to extract an archive
//   - ArchiveEntry: A file or directory inside an archive
//   - ClassificationResult: Whether the payload is a single document
//   - ExtractionDecision: Where the extracted output lands
//   - JobRecord: The outcome of a job, as traced and stored
//   - Config: Settings resolved once per invocation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
