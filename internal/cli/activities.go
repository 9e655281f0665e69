package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dayledger/dayledger/internal/app/ledger"
	"github.com/dayledger/dayledger/internal/domain"
)

var (
	flagActivitiesRaw  bool
	flagActivitiesFile string
)

func init() {
	rootCmd.AddCommand(activitiesCmd)
	activitiesCmd.AddCommand(activitiesListCmd)
	activitiesCmd.AddCommand(activitiesApplyCmd)
	activitiesCmd.AddCommand(activitiesUndoCmd)
	activitiesCmd.AddCommand(activitiesEditCmd)

	rootCmd.AddCommand(adjustCmd)
	adjustCmd.AddCommand(adjustAddCmd)
	adjustCmd.AddCommand(adjustRemoveCmd)

	activitiesListCmd.Flags().BoolVar(&flagActivitiesRaw, "raw", false, "Print \"label | points\" lines, suitable for edit -f")
	activitiesEditCmd.Flags().StringVarP(&flagActivitiesFile, "file", "f", "", "Read entries from file instead of stdin")
}

// ─── activities ─────────────────────────────────────────────────────────────

var activitiesCmd = &cobra.Command{
	Use:     "activities",
	Aliases: []string{"act"},
	Short:   "Apply and edit point-costing activities",
}

var activitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the activity catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := sess.ledger.Snapshot()
		out := cmd.OutOrStdout()
		if flagActivitiesRaw {
			fmt.Fprintln(out, ledger.FormatActivityLines(doc.ActivityCatalog))
			return nil
		}
		for i, a := range doc.ActivityCatalog {
			fmt.Fprintf(out, "  %2d. %s (-%d)\n", i+1, a.Label, a.Points)
		}
		return nil
	},
}

var activitiesApplyCmd = &cobra.Command{
	Use:   "apply N",
	Short: "Apply catalog activity N to today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := parsePosition(args[0], "activity")
		if err != nil {
			return err
		}
		app, err := sess.ledger.ApplyActivity(cmd.Context(), idx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %s (-%d). Score %s\n",
			app.Label, app.Points, formatScore(sess.ledger.DailyScore()))
		return nil
	},
}

var activitiesUndoCmd = &cobra.Command{
	Use:   "undo N",
	Short: "Remove the Nth activity applied today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parsePosition(args[0], "applied activity")
		if err != nil {
			return err
		}
		if err := sess.ledger.UndoActivity(cmd.Context(), pos); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed. Score %s\n", formatScore(sess.ledger.DailyScore()))
		return nil
	},
}

var activitiesEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Replace the activity catalog",
	Long: `Replace the activity catalog from --file or stdin. Each non-blank line is
"label | points" with points between 1 and 5. Any bad line rejects the whole
edit and the previous catalog is kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, flagActivitiesFile)
		if err != nil {
			return err
		}
		entries, err := ledger.ParseActivityLines(text)
		if err != nil {
			return err
		}
		if err := sess.ledger.ReplaceActivityCatalog(cmd.Context(), entries); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d activities\n", len(entries))
		return nil
	},
}

// ─── adjust ─────────────────────────────────────────────────────────────────

var adjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Add or remove manual score adjustments",
}

var adjustAddCmd = &cobra.Command{
	Use:   "add AMOUNT [REASON...]",
	Short: "Subtract AMOUNT from today's score",
	Example: `  dayledger adjust add 0.5 late snack
  dayledger adjust add -- -1 bonus`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseFloat(args[0], 64)
		if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return fmt.Errorf("%w: %q", domain.ErrInvalidAmount, args[0])
		}
		reason := strings.Join(args[1:], " ")
		if err := sess.ledger.AddAdjustment(cmd.Context(), amount, reason); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Adjusted %s. Score %s\n", formatSigned(amount), formatScore(sess.ledger.DailyScore()))
		return nil
	},
}

var adjustRemoveCmd = &cobra.Command{
	Use:     "rm N",
	Aliases: []string{"remove"},
	Short:   "Remove today's Nth adjustment",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parsePosition(args[0], "adjustment")
		if err != nil {
			return err
		}
		if err := sess.ledger.RemoveAdjustment(cmd.Context(), pos); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed. Score %s\n", formatScore(sess.ledger.DailyScore()))
		return nil
	},
}
