// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The extraction pipeline is split across three small services that
// ExtractionService sequences: Classifier, PathResolver and Finalizer
// decide and place output; the archive reader and trace log are driven ports.
//
// Services are pure Go with no CGO or external dependencies.
package services
