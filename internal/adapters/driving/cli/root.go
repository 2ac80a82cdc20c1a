package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driving"
	"github.com/Jeff-411/book-extractor/internal/logger"
)

// SettingsFactory builds the settings service for an application root.
type SettingsFactory func(rootDir string) (driving.SettingsService, error)

// ServiceFactory builds the job services for a resolved configuration.
type ServiceFactory func(cfg domain.Config) (*Services, error)

// Services are the core services a command runs against.
type Services struct {
	Extractor driving.Extractor
	History   driving.HistoryService

	// Close releases resources such as the history database. May be nil.
	Close func() error
}

func (s *Services) close() {
	if s == nil || s.Close == nil {
		return
	}
	if err := s.Close(); err != nil {
		logger.Warn("closing services: %v", err)
	}
}

var (
	version = "dev"

	verbose  bool
	rootFlag string

	settingsFactory SettingsFactory
	serviceFactory  ServiceFactory

	// executable is swapped in tests.
	executable = os.Executable
)

var rootCmd = &cobra.Command{
	Use:   "book-extractor <archive.zip>",
	Short: "Extract a zip archive where it belongs",
	Long: `Extracts a zip archive in one step.

An archive holding exactly one document (by default a .docx file) is
extracted into the configured output folder. Anything else is extracted
into the folder containing the archive. Every job is traced to
logs/combined.log; failures go to logs/error.log.

Settings come from book-extractor.toml and .env in the application root,
overridden by environment variables. The root is --root, else
$BOOK_EXTRACTOR_ROOT, else the folder holding the executable.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	RunE: runExtract,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostic output")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "application root holding settings and logs")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetFactories wires the core services into the commands.
func SetFactories(settings SettingsFactory, services ServiceFactory) {
	settingsFactory = settings
	serviceFactory = services
}

// Execute runs the command line.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runExtract(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadSettings()
	if err != nil {
		return err
	}
	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	rec, err := svc.Extractor.Extract(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printRecord(cmd, newStyles(cmd.OutOrStdout()), rec)
	return nil
}

// printRecord reports a successful job.
func printRecord(cmd *cobra.Command, st *styles, rec *domain.JobRecord) {
	if rec == nil {
		return
	}
	cmd.Printf("%s %s\n", st.success("Extracted"), filepath.Base(rec.Job.ArchivePath))
	cmd.Printf("  %s %s\n", st.label("Kind:"), rec.Classification.Kind.Description())
	cmd.Printf("  %s %s\n", st.label("Target:"), rec.Decision.TargetDirectory)
	cmd.Printf("  %s %d\n", st.label("Files:"), len(rec.Files))
	if logger.IsVerbose() {
		for _, f := range rec.Files {
			cmd.Printf("    %s\n", st.muted(f))
		}
	}
}

// resolveRoot picks the application root: --root, then $BOOK_EXTRACTOR_ROOT,
// then the executable's directory.
func resolveRoot() (string, error) {
	root := rootFlag
	if root == "" {
		root = os.Getenv(domain.EnvRoot)
	}
	if root == "" {
		exe, err := executable()
		if err != nil {
			return "", fmt.Errorf("locating executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		root = filepath.Dir(exe)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: root %q: %v", domain.ErrInvalidInput, root, err)
	}
	return abs, nil
}

func loadSettings() (driving.SettingsService, domain.Config, error) {
	if settingsFactory == nil {
		return nil, domain.Config{}, errors.New("settings service not configured")
	}
	root, err := resolveRoot()
	if err != nil {
		return nil, domain.Config{}, err
	}
	logger.Debug("application root %s", root)

	settings, err := settingsFactory(root)
	if err != nil {
		return nil, domain.Config{}, err
	}
	cfg, err := settings.Load()
	if err != nil {
		return nil, domain.Config{}, err
	}
	return settings, cfg, nil
}

func openServices(cfg domain.Config) (*Services, error) {
	if serviceFactory == nil {
		return nil, errors.New("extraction service not configured")
	}
	svc, err := serviceFactory(cfg)
	if err != nil {
		return nil, err
	}
	if svc == nil || svc.Extractor == nil {
		return nil, errors.New("extraction service not configured")
	}
	return svc, nil
}
