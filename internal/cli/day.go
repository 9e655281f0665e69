package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dayledger/dayledger/internal/app/export"
)

var (
	flagDayEndYes    bool
	flagHistoryLimit int
	flagExportDir    string
)

func init() {
	rootCmd.AddCommand(dayCmd)
	dayCmd.AddCommand(dayEndCmd)
	dayCmd.AddCommand(dayCheckCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)

	dayEndCmd.Flags().BoolVarP(&flagDayEndYes, "yes", "y", false, "Skip the confirmation prompt")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 0, "Show only the N most recent days (0 = all)")
	exportCmd.Flags().StringVarP(&flagExportDir, "output", "o", ".", "Directory to write the export file into")
}

// ─── day ────────────────────────────────────────────────────────────────────

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Close the current day",
}

var dayEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the day now and fold its score into the rolling total",
	Args:  cobra.NoArgs,
	RunE:  runDayEnd,
}

func runDayEnd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if !flagDayEndYes {
		fmt.Fprintf(out, "End the day with score %s? This cannot be undone. [y/N]: ",
			formatScore(sess.ledger.DailyScore()))
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	rec, err := sess.ledger.Rollover(cmd.Context(), sess.ledger.Now())
	if err != nil {
		return err
	}
	if rec == nil {
		fmt.Fprintln(out, "Nothing happened today; no record written. New day started.")
		return nil
	}
	fmt.Fprintf(out, "Day closed: %d done, net %s. Rolling total %s\n",
		rec.CompletedCount, formatScore(rec.Net), formatScore(sess.ledger.RollingTotal()))
	return nil
}

var dayCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Roll over if the calendar day has changed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rolled, err := sess.ledger.CheckRollover(cmd.Context(), sess.ledger.Now())
		if err != nil {
			return err
		}
		if rolled {
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled over. Rolling total %s\n", formatScore(sess.ledger.RollingTotal()))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Same day; nothing to do.")
		}
		return nil
	},
}

// ─── history ────────────────────────────────────────────────────────────────

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show closed days, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := sess.ledger.Snapshot()
		out := cmd.OutOrStdout()
		if len(doc.History) == 0 {
			fmt.Fprintln(out, "No closed days yet.")
			return nil
		}
		shown := 0
		for i := len(doc.History) - 1; i >= 0; i-- {
			if flagHistoryLimit > 0 && shown == flagHistoryLimit {
				break
			}
			rec := doc.History[i]
			fmt.Fprintf(out, "%s  done %-3d adj %-3d act %-3d net %s\n",
				rec.DayStart.In(sess.ledger.Location()).Format("2006-01-02"),
				rec.CompletedCount, len(rec.Adjustments), len(rec.ActivityApplications), formatScore(rec.Net))
			shown++
		}
		fmt.Fprintf(out, "Rolling total %s\n", formatScore(doc.RollingTotal))
		return nil
	},
}

// ─── export ─────────────────────────────────────────────────────────────────

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the full ledger to a JSON file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := export.WriteFile(flagExportDir, sess.ledger.Snapshot(), sess.ledger.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}
