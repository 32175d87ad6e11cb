package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/httpapi"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/promadapters"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/pubsubmanager"
)

const (
	flagAddr        = "addr"
	shutdownTimeout = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ping scenario and serve its timeline over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr, _ := cmd.Flags().GetString(flagAddr)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		env, err := newScenarioEnv(ctx, cmd)
		if err != nil {
			return err
		}
		defer env.close()

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		options := append(env.options, pubsubmanager.WithMetrics(promadapters.NewMetricsCollector(registry)))

		manager, err := pubsubmanager.NewManager(options...)
		if err != nil {
			return err
		}

		if err = runPingScenario(manager); err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           httpapi.NewRouter(manager, httpapi.WithLogger(env.logger), httpapi.WithMetricsRegistry(registry)),
			ReadHeaderTimeout: 5 * time.Second,
		}

		serverErrors := make(chan error, 1)

		go func() {
			env.logger.Info("serving timeline", "addr", addr, "entries", len(manager.GetHistory()))
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err = <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}

			return err

		case <-ctx.Done():
			env.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err = srv.Shutdown(shutdownCtx); err != nil {
				env.logger.Warn("graceful shutdown did not complete", "error", err.Error())
				return srv.Close()
			}

			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String(flagAddr, ":8080", "address to listen on")
}
