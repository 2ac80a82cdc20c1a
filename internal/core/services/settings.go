package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driven"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for the TOML config file.
const (
	keyOutputFolder    = "output_folder"
	keyLogDir          = "log_dir"
	keyStagingDir      = "staging_dir"
	keyCollisionPolicy = "collision_policy"
	keyDocumentExts    = "document_extensions"
	keyVerifyDocuments = "verify_documents"
	keyHistoryEnabled  = "history.enabled"
	keyHistoryPath     = "history.path"
	keyWatchSettleMS   = "watch.settle_ms"
)

// Environment variables. OUTPUT_FOLDER keeps its historical name; the rest
// are namespaced.
const (
	EnvOutputFolder    = "OUTPUT_FOLDER"
	EnvLogDir          = "BOOK_EXTRACTOR_LOG_DIR"
	EnvStagingDir      = "BOOK_EXTRACTOR_STAGING_DIR"
	EnvCollisionPolicy = "BOOK_EXTRACTOR_COLLISION_POLICY"
	EnvDocumentExts    = "BOOK_EXTRACTOR_DOCUMENT_EXTENSIONS"
	EnvVerifyDocuments = "BOOK_EXTRACTOR_VERIFY_DOCUMENTS"
	EnvHistoryEnabled  = "BOOK_EXTRACTOR_HISTORY"
	EnvHistoryPath     = "BOOK_EXTRACTOR_HISTORY_PATH"
	EnvWatchSettleMS   = "BOOK_EXTRACTOR_WATCH_SETTLE_MS"
)

const sourceDefault = "default"

// SettingsService resolves configuration from defaults, the TOML config
// file and the environment, in increasing order of precedence.
type SettingsService struct {
	rootDir     string
	configStore driven.ConfigStore
	env         driven.EnvSource
	sources     map[string]string
}

// NewSettingsService creates a settings service for rootDir.
// configStore and env may be nil.
func NewSettingsService(rootDir string, configStore driven.ConfigStore, env driven.EnvSource) *SettingsService {
	return &SettingsService{
		rootDir:     rootDir,
		configStore: configStore,
		env:         env,
		sources:     make(map[string]string),
	}
}

// Load resolves and validates the configuration.
func (s *SettingsService) Load() (domain.Config, error) {
	cfg := domain.DefaultConfig(s.rootDir)
	s.sources = make(map[string]string)
	for _, key := range s.Keys() {
		s.sources[key] = sourceDefault
	}

	s.applyConfigFile(&cfg)
	if err := s.applyEnv(&cfg); err != nil {
		return domain.Config{}, err
	}

	cfg.DocumentExtensions = domain.NormalizeExtensions(cfg.DocumentExtensions)
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// Keys returns every configuration key in display order.
func (s *SettingsService) Keys() []string {
	return []string{
		keyOutputFolder,
		keyLogDir,
		keyStagingDir,
		keyCollisionPolicy,
		keyDocumentExts,
		keyVerifyDocuments,
		keyHistoryEnabled,
		keyHistoryPath,
		keyWatchSettleMS,
	}
}

// Set validates value for key and writes it to the config file.
func (s *SettingsService) Set(key, value string) error {
	if s.configStore == nil {
		return fmt.Errorf("%w: no config file is available", domain.ErrInvalidInput)
	}
	v, err := parseSetting(key, value)
	if err != nil {
		return err
	}
	return s.configStore.Set(key, v)
}

// parseSetting converts a command-line value to the type stored for key.
func parseSetting(key, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch key {
	case keyOutputFolder, keyLogDir, keyStagingDir, keyHistoryPath:
		return raw, nil

	case keyCollisionPolicy:
		p := domain.CollisionPolicy(strings.ToLower(raw))
		if !p.IsValid() {
			return nil, fmt.Errorf("%w: unknown collision policy %q (want one of %v)",
				domain.ErrInvalidInput, raw, domain.AllCollisionPolicies())
		}
		return p.String(), nil

	case keyDocumentExts:
		exts := domain.NormalizeExtensions(strings.Split(raw, ","))
		if len(exts) == 0 {
			return nil, fmt.Errorf("%w: at least one document extension is required", domain.ErrInvalidInput)
		}
		return exts, nil

	case keyVerifyDocuments, keyHistoryEnabled:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not a boolean", domain.ErrInvalidInput, key, raw)
		}
		return b, nil

	case keyWatchSettleMS:
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("%w: %s=%q is not a non-negative integer", domain.ErrInvalidInput, key, raw)
		}
		return int64(ms), nil

	default:
		return nil, fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// Sources describes where each setting came from.
func (s *SettingsService) Sources() map[string]string {
	out := make(map[string]string, len(s.sources))
	for k, v := range s.sources {
		out[k] = v
	}
	return out
}

func (s *SettingsService) applyConfigFile(cfg *domain.Config) {
	if s.configStore == nil {
		return
	}
	origin := s.configStore.Path()

	setString := func(key string, dst *string) {
		if v := s.configStore.GetString(key); v != "" {
			*dst = v
			s.sources[key] = origin
		}
	}
	setString(keyOutputFolder, &cfg.OutputFolder)
	setString(keyLogDir, &cfg.LogDir)
	setString(keyStagingDir, &cfg.StagingDir)
	setString(keyHistoryPath, &cfg.HistoryPath)

	if v := s.configStore.GetString(keyCollisionPolicy); v != "" {
		cfg.CollisionPolicy = domain.CollisionPolicy(strings.ToLower(v))
		s.sources[keyCollisionPolicy] = origin
	}
	if exts := s.configStore.GetStringSlice(keyDocumentExts); len(exts) > 0 {
		cfg.DocumentExtensions = exts
		s.sources[keyDocumentExts] = origin
	}
	if _, ok := s.configStore.Get(keyVerifyDocuments); ok {
		cfg.VerifyDocuments = s.configStore.GetBool(keyVerifyDocuments)
		s.sources[keyVerifyDocuments] = origin
	}
	if _, ok := s.configStore.Get(keyHistoryEnabled); ok {
		cfg.HistoryEnabled = s.configStore.GetBool(keyHistoryEnabled)
		s.sources[keyHistoryEnabled] = origin
	}
	if _, ok := s.configStore.Get(keyWatchSettleMS); ok {
		cfg.WatchSettle = time.Duration(s.configStore.GetInt(keyWatchSettleMS)) * time.Millisecond
		s.sources[keyWatchSettleMS] = origin
	}
}

func (s *SettingsService) applyEnv(cfg *domain.Config) error {
	if s.env == nil {
		return nil
	}

	lookup := func(envKey, key string) (string, bool) {
		v, ok := s.env.Lookup(envKey)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			return "", false
		}
		s.sources[key] = s.env.Origin(envKey)
		return v, true
	}

	if v, ok := lookup(EnvOutputFolder, keyOutputFolder); ok {
		cfg.OutputFolder = v
	}
	if v, ok := lookup(EnvLogDir, keyLogDir); ok {
		cfg.LogDir = v
	}
	if v, ok := lookup(EnvStagingDir, keyStagingDir); ok {
		cfg.StagingDir = v
	}
	if v, ok := lookup(EnvHistoryPath, keyHistoryPath); ok {
		cfg.HistoryPath = v
	}
	if v, ok := lookup(EnvCollisionPolicy, keyCollisionPolicy); ok {
		cfg.CollisionPolicy = domain.CollisionPolicy(strings.ToLower(v))
	}
	if v, ok := lookup(EnvDocumentExts, keyDocumentExts); ok {
		cfg.DocumentExtensions = strings.Split(v, ",")
	}
	if v, ok := lookup(EnvVerifyDocuments, keyVerifyDocuments); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", domain.ErrInvalidInput, EnvVerifyDocuments, v)
		}
		cfg.VerifyDocuments = b
	}
	if v, ok := lookup(EnvHistoryEnabled, keyHistoryEnabled); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", domain.ErrInvalidInput, EnvHistoryEnabled, v)
		}
		cfg.HistoryEnabled = b
	}
	if v, ok := lookup(EnvWatchSettleMS, keyWatchSettleMS); ok {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return fmt.Errorf("%w: %s=%q is not a non-negative integer", domain.ErrInvalidInput, EnvWatchSettleMS, v)
		}
		cfg.WatchSettle = time.Duration(ms) * time.Millisecond
	}
	return nil
}
