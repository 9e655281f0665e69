// Package cli implements the dayledger command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dayledger/dayledger/internal/app/ledger"
	"github.com/dayledger/dayledger/internal/daemon"
	"github.com/dayledger/dayledger/internal/domain"
)

var (
	flagHome   string
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:   "dayledger",
	Short: "Track daily objectives, activities and a rolling score",
	Long: `dayledger keeps a ledger of the day: objectives you complete, activities
that cost points, and manual adjustments. At each calendar-day boundary the
day's net score is folded into a rolling total and archived in history.`,
	SilenceUsage:      true,
	PersistentPreRunE: openSession,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHome, "home", "", "Data home (default $DAYLEDGER_HOME or ~/.dayledger)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default <home>/config.toml)")
}

// Execute runs the root command until it finishes or the process is signalled.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx)
}

func execute(ctx context.Context) error {
	defer closeSession()
	return rootCmd.ExecuteContext(ctx)
}

// ─── Session ────────────────────────────────────────────────────────────────

// session is the opened ledger shared by the command being run.
type session struct {
	cfg    daemon.Config
	home   string
	logger *slog.Logger
	ledger *ledger.Ledger
	closer io.Closer
}

var sess *session

func openSession(cmd *cobra.Command, _ []string) error {
	home := flagHome
	if home == "" {
		home = daemon.HomeDir()
	}
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath = filepath.Join(home, "config.toml")
	}
	cfg, err := daemon.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	logger := daemon.NewLogger(cmd.ErrOrStderr(), cfg.Log)

	l, closer, err := daemon.OpenLedger(cmd.Context(), cfg, home, logger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	sess = &session{cfg: cfg, home: home, logger: logger, ledger: l, closer: closer}
	return nil
}

func closeSession() {
	if sess == nil {
		return
	}
	if err := sess.closer.Close(); err != nil {
		sess.logger.Warn("close storage", "err", err)
	}
	sess = nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// parsePosition converts a 1-based list position typed by the user into a
// 0-based index.
func parsePosition(arg, what string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", domain.ErrInvalidIndex, what, arg)
	}
	return n - 1, nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatSigned(v float64) string {
	if v >= 0 {
		return "+" + formatScore(v)
	}
	return formatScore(v)
}
