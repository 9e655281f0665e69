package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dayledger/dayledger/internal/app/ledger"
	"github.com/dayledger/dayledger/internal/domain"
)

var (
	flagObjectivesRaw       bool
	flagObjectivesRemaining bool
	flagObjectivesFile      string
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(objectivesCmd)
	objectivesCmd.AddCommand(objectivesListCmd)
	objectivesCmd.AddCommand(objectivesDoneCmd)
	objectivesCmd.AddCommand(objectivesEditCmd)

	objectivesListCmd.Flags().BoolVar(&flagObjectivesRaw, "raw", false, "Print one label per line, suitable for edit -f")
	objectivesListCmd.Flags().BoolVar(&flagObjectivesRemaining, "remaining", false, "Show only objectives not yet done today")
	objectivesEditCmd.Flags().StringVarP(&flagObjectivesFile, "file", "f", "", "Read labels from file instead of stdin")
}

// ─── status ─────────────────────────────────────────────────────────────────

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's objectives, score and rolling total",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	l := sess.ledger
	doc := l.Snapshot()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Day %s\n", doc.CurrentDayStart.In(l.Location()).Format("Mon 2006-01-02"))
	fmt.Fprintf(out, "Score %s   Rolling %s   Projected %s\n\n",
		formatScore(doc.DailyScore()), formatScore(doc.RollingTotal), formatScore(doc.ProjectedTotal()))

	printObjectives(out, &doc)

	if len(doc.AdjustmentsToday) > 0 {
		fmt.Fprintln(out, "\nAdjustments")
		for i, a := range doc.AdjustmentsToday {
			fmt.Fprintf(out, "  %2d. %s  %s\n", i+1, formatSigned(a.Amount), a.Reason)
		}
	}
	if len(doc.ActivityApplicationsToday) > 0 {
		fmt.Fprintln(out, "\nActivities applied")
		for i, a := range doc.ActivityApplicationsToday {
			fmt.Fprintf(out, "  %2d. %s (-%d)  %s\n", i+1, a.Label, a.Points, a.AppliedAt.In(l.Location()).Format("15:04"))
		}
	}
	return nil
}

func printObjectives(out io.Writer, doc *domain.Document) {
	fmt.Fprintf(out, "Objectives (%d/%d done)\n", len(doc.CompletedToday), len(doc.ObjectiveCatalog))
	for i, label := range doc.ObjectiveCatalog {
		mark := " "
		if doc.IsCompleted(i) {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] %2d. %s\n", mark, i+1, label)
	}
}

// ─── objectives ─────────────────────────────────────────────────────────────

var objectivesCmd = &cobra.Command{
	Use:     "objectives",
	Aliases: []string{"obj"},
	Short:   "List, complete and edit objectives",
}

var objectivesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the objective catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := sess.ledger.Snapshot()
		if flagObjectivesRaw {
			fmt.Fprintln(cmd.OutOrStdout(), ledger.FormatObjectiveLines(doc.ObjectiveCatalog))
			return nil
		}
		if flagObjectivesRemaining {
			for _, o := range doc.RemainingObjectives() {
				fmt.Fprintf(cmd.OutOrStdout(), "  [ ] %2d. %s\n", o.ID+1, o.Label)
			}
			return nil
		}
		printObjectives(cmd.OutOrStdout(), &doc)
		return nil
	},
}

var objectivesDoneCmd = &cobra.Command{
	Use:   "done N...",
	Short: "Mark objectives complete for today",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runObjectivesDone,
}

func runObjectivesDone(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		id, err := parsePosition(arg, "objective")
		if err != nil {
			return err
		}
		if err := sess.ledger.CompleteObjective(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", sess.ledger.Snapshot().ObjectiveCatalog[id])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Score %s\n", formatScore(sess.ledger.DailyScore()))
	return nil
}

var objectivesEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Replace the objective catalog, one label per line",
	Long: `Replace the objective catalog. Labels are read one per line from --file,
or from stdin. Blank lines are ignored; an all-blank input is rejected.
Objectives are identified by position, so today's completions stay attached
to whatever label now sits at the same position.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, flagObjectivesFile)
		if err != nil {
			return err
		}
		labels := ledger.ParseObjectiveLines(text)
		if err := sess.ledger.ReplaceObjectiveCatalog(cmd.Context(), labels); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d objectives\n", len(labels))
		return nil
	},
}

// readInput returns the contents of path, or of stdin when path is empty.
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}
