package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dayledger/dayledger/internal/api"
)

var (
	flagServeHost string
	flagServePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagServeHost, "host", "", "Listen host (overrides [api].host)")
	serveCmd.Flags().IntVar(&flagServePort, "port", 0, "Listen port (overrides [api].port)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and roll over at each day boundary",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := sess.cfg
	if flagServeHost != "" {
		cfg.API.Host = flagServeHost
	}
	if flagServePort != 0 {
		cfg.API.Port = flagServePort
	}

	srv := api.NewServer(sess.ledger, sess.logger)
	if cfg.API.Metrics {
		srv.EnableMetrics()
	}
	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		sess.logger.Info("api listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return sess.ledger.Watch(ctx, cfg.WatchInterval())
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sess.logger.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
