package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [job-id]",
	Short: "Show recent extraction jobs",
	Long: `Lists recently finished jobs, newest first, or shows one job in detail.

History is only recorded when history.enabled is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of jobs")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadSettings()
	if err != nil {
		return err
	}
	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	if svc.History == nil || !svc.History.Enabled() {
		cmd.Println("History is disabled. Enable it with: book-extractor config set history.enabled true")
		return nil
	}

	st := newStyles(cmd.OutOrStdout())
	if len(args) == 1 {
		entry, err := svc.History.Get(cmd.Context(), args[0])
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Printf("No job with ID %s.\n", args[0])
			return err
		}
		if err != nil {
			return err
		}
		printHistoryDetail(cmd, st, entry)
		return nil
	}

	entries, err := svc.History.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		cmd.Println("No jobs recorded yet.")
		return nil
	}
	for i := range entries {
		e := &entries[i]
		state := st.success(string(e.State))
		if e.State == domain.StateFailed {
			state = st.failure(e.ErrorCategory)
		}
		cmd.Printf("%s  %s  %s  %s\n",
			st.muted(e.FinishedAt.Local().Format(time.DateTime)), e.JobID, state, e.ArchivePath)
	}
	return nil
}

func printHistoryDetail(cmd *cobra.Command, st *styles, e *domain.HistoryEntry) {
	cmd.Println(st.heading("Job " + e.JobID))
	cmd.Printf("  %s %s\n", st.label("Archive:"), e.ArchivePath)
	cmd.Printf("  %s %s\n", st.label("State:"), e.State)
	if e.Kind != "" {
		cmd.Printf("  %s %s\n", st.label("Kind:"), e.Kind.Description())
	}
	if e.TargetDirectory != "" {
		cmd.Printf("  %s %s\n", st.label("Target:"), e.TargetDirectory)
	}
	cmd.Printf("  %s %d\n", st.label("Files:"), e.FileCount)
	if e.ErrorCategory != "" {
		cmd.Printf("  %s %s: %s\n", st.label("Error:"), e.ErrorCategory, e.ErrorMessage)
	}
	cmd.Printf("  %s %s\n", st.label("Started:"), e.RequestedAt.Local().Format(time.DateTime))
	cmd.Printf("  %s %s\n", st.label("Finished:"), e.FinishedAt.Local().Format(time.DateTime))
}
