package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/conduit/internal/cli"
	"github.com/aretw0/conduit/internal/presentation/tui"
	httpAdapter "github.com/aretw0/conduit/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP dispatch server",
	Long: `Starts Conduit in server mode, exposing POST /dispatch, GET /actions, GET /healthz
and Prometheus metrics on GET /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cli.Build(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()

		rt.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		handler := httpAdapter.NewHandler(rt.Conduit,
			httpAdapter.WithMetrics(rt.Registry),
			httpAdapter.WithLogger(rt.Logger),
		)

		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		tui.PrintBanner(cmd.ErrOrStderr())

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			rt.Logger.Info("conduit server listening", "addr", srv.Addr, "manifest", rt.Conduit.Manifest().ID)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			return err
		case sig := <-shutdown:
			rt.Logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				rt.Logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				return errors.Join(err, srv.Close())
			}
			rt.Logger.Info("conduit server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen-addr", "l", ":8080", "Address to listen on")
}
