package driven

// EnvSource looks up environment settings.
type EnvSource interface {
	// Lookup returns the value for key and whether it was set.
	Lookup(key string) (string, bool)

	// Origin describes where key's value came from, e.g. "env" or a file path.
	// Returns "" if key is not set.
	Origin(key string) string
}
