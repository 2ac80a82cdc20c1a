package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive.zip>",
	Short: "Show how an archive would be extracted",
	Long: `Lists the archive's entries and reports its classification and the
folder it would be extracted into. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadSettings()
	if err != nil {
		return err
	}
	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	plan, err := svc.Extractor.Plan(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.heading(plan.ArchivePath))
	cmd.Println()

	if len(plan.Entries) == 0 {
		cmd.Println(st.muted("  (empty archive)"))
	}
	for _, e := range plan.Entries {
		if e.IsDirectory {
			cmd.Printf("  %s\n", st.muted(e.RelativePath+"/"))
			continue
		}
		cmd.Printf("  %s %s\n", e.RelativePath, st.muted(formatSize(e.SizeBytes)))
	}
	cmd.Println()

	c := plan.Classification
	cmd.Printf("%s %s (%d files)\n", st.label("Kind:"), c.Kind.Description(), c.FileCount)
	if c.IsSingleDocument() {
		cmd.Printf("%s %s\n", st.label("Document:"), c.DocumentEntry)
		if c.Document != nil && c.Document.Title != "" {
			cmd.Printf("%s %s\n", st.label("Title:"), c.Document.Title)
		}
	}

	if plan.ResolveErr != nil {
		cmd.Printf("%s %s\n", st.label("Target:"),
			st.failure(domain.ErrorCategory(plan.ResolveErr)+": "+plan.ResolveErr.Error()))
		return nil
	}
	cmd.Printf("%s %s\n", st.label("Target:"), plan.Decision.TargetDirectory)
	return nil
}

// formatSize renders a byte count for listings.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
