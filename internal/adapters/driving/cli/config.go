package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved settings",
	Long: `Shows every setting with its value and where it came from: the default,
book-extractor.toml, .env or the environment.

Use "config set" to write a setting to book-extractor.toml.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a setting to the config file",
	Long: `Validates a setting and writes it to book-extractor.toml in the application
root. Environment variables still take precedence over the file.

Keys:
  output_folder        folder single documents are extracted into
  log_dir              folder for combined.log and error.log
  staging_dir          folder archives are unpacked into first
  collision_policy     overwrite, uniquify or fail
  document_extensions  comma-separated, e.g. .docx,.odt
  verify_documents     true to check the document opens
  history.enabled      true to record jobs
  history.path         history database file
  watch.settle_ms      quiet period for the watch command`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	settings, cfg, err := loadSettings()
	if err != nil {
		return err
	}
	st := newStyles(cmd.OutOrStdout())
	sources := settings.Sources()

	cmd.Println(st.heading("Settings"))
	cmd.Printf("  %s %s\n", st.label("root:"), cfg.RootDir)
	for _, key := range settings.Keys() {
		value := configValue(&cfg, key)
		if value == "" {
			value = st.warning("(not set)")
		}
		cmd.Printf("  %s %s %s\n", st.label(key+":"), value, st.muted("["+sources[key]+"]"))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsFactory == nil {
		return errors.New("settings service not configured")
	}
	root, err := resolveRoot()
	if err != nil {
		return err
	}
	settings, err := settingsFactory(root)
	if err != nil {
		return err
	}
	if err := settings.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

// configValue renders the resolved value of a setting.
func configValue(cfg *domain.Config, key string) string {
	switch key {
	case "output_folder":
		return cfg.ResolvePath(cfg.OutputFolder)
	case "log_dir":
		return cfg.ResolvePath(cfg.LogDir)
	case "staging_dir":
		return cfg.ResolvePath(cfg.StagingDir)
	case "collision_policy":
		return cfg.CollisionPolicy.String()
	case "document_extensions":
		return strings.Join(cfg.DocumentExtensions, ",")
	case "verify_documents":
		return strconv.FormatBool(cfg.VerifyDocuments)
	case "history.enabled":
		return strconv.FormatBool(cfg.HistoryEnabled)
	case "history.path":
		return cfg.HistoryDBPath()
	case "watch.settle_ms":
		return strconv.FormatInt(cfg.WatchSettle.Milliseconds(), 10)
	default:
		return ""
	}
}
