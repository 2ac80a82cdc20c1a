package domain

// ExtractionDecision records where an archive's output lands.
//
// For KindGeneral, TargetDirectory is the directory containing SourceArchive.
// For KindSingleDocument, it is the configured output folder, always absolute.
type ExtractionDecision struct {
	TargetDirectory string
	SourceArchive   string
	Kind            ContentKind
}
