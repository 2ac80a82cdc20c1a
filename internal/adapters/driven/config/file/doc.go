// Package file provides the TOML-backed configuration store.
//
// The file lives at <root>/book-extractor.toml. Nested tables are flattened
// into dot-notation keys, so
//
//	[history]
//	enabled = true
//
// is read as "history.enabled".
package file
