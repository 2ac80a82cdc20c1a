// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ArchiveReader: Enumerates and extracts zip archives
//   - TraceLog: Appends per-job records to the combined and error logs
//   - ConfigStore: TOML application configuration
//   - EnvSource: Environment lookups (process env over .env file)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DocumentInspector: Content verification of the single document.
//     Without it, classification uses the extension rule alone.
//   - HistoryStore: Job history persistence. Without it, history is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
