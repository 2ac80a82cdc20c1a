package cli

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jeff-411/book-extractor/internal/adapters/driving/watch"
	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

var (
	watchSettle   time.Duration
	watchInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <folder>",
	Short: "Extract archives as they arrive in a folder",
	Long: `Watches a folder (for example Downloads) and extracts each new .zip
archive once it has finished downloading. An archive counts as finished when
its size has not changed for the settle period.

Archives already in the folder are left alone. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 0, "quiet period before extracting (default from settings)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", watch.DefaultInterval, "minimum time between jobs")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadSettings()
	if err != nil {
		return err
	}
	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	settle := cfg.WatchSettle
	if watchSettle > 0 {
		settle = watchSettle
	}

	st := newStyles(cmd.OutOrStdout())
	w := watch.New(svc.Extractor, watch.Options{
		Settle:   settle,
		Interval: watchInterval,
		OnResult: func(rec *domain.JobRecord, err error) {
			if err != nil {
				name := ""
				if rec != nil {
					name = filepath.Base(rec.Job.ArchivePath)
				}
				cmd.Printf("%s %s: %s\n", st.failure(domain.ErrorCategory(err)), name, err)
				return
			}
			printRecord(cmd, st, rec)
		},
	})

	cmd.Printf("%s %s\n", st.heading("Watching"), args[0])
	return w.Run(cmd.Context(), args[0])
}
