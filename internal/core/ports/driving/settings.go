package driving

import "github.com/Jeff-411/book-extractor/internal/core/domain"

// SettingsService resolves the invocation's configuration.
type SettingsService interface {
	// Load resolves and validates the configuration.
	Load() (domain.Config, error)

	// Sources describes where each resolved setting came from, keyed by
	// setting name. Only valid after Load.
	Sources() map[string]string

	// Keys returns every setting name in display order.
	Keys() []string

	// Set validates a value and persists it to the config file.
	// Returns domain.ErrInvalidInput for unknown keys or bad values.
	Set(key, value string) error
}
