package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/shirtform/internal/errors"
	"github.com/vango-dev/shirtform/pkg/middleware"
	"github.com/vango-dev/shirtform/pkg/server"
)

func serveCmd(dir *string) *cobra.Command {
	var (
		addr string
		mode string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form over HTTP",
		Long: `Serve the form page, live WebSocket sessions and the JSON API.

Routes:
  GET  /              the form, validated live when scripts run
  POST /              plain form post, validated on the server
  GET  /ws            live session socket
  POST /api/validate  validate a JSON values document
  GET  /api/catalog   animals and shirt sizes
  GET  /api/schema    the rule groups
  GET  /healthz       health check
  GET  /metrics       Prometheus metrics (when enabled)

Examples:
  shirtform serve
  shirtform serve --addr=:9000
  shirtform serve --mode=async`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*dir, os.Stderr)
			if err != nil {
				return err
			}
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if mode != "" {
				a.cfg.Validation.Mode = mode
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}

			srv, err := newServer(a)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			success(cmd.OutOrStdout(), "Serving on %s (%s validation)", a.cfg.Server.Addr, a.cfg.Mode())
			if err := srv.ListenAndServe(ctx); err != nil {
				return errors.New("E304").Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from shirtform.json)")
	cmd.Flags().StringVar(&mode, "mode", "", "Validation mode: sync or async")

	return cmd
}

// newServer builds the HTTP server from the loaded configuration.
func newServer(a *app) (*server.Server, error) {
	cfg := a.cfg
	opts := []server.Option{
		server.WithLogger(a.logger),
		server.WithCatalog(a.catalog),
	}

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := middleware.NewMetrics(
			middleware.WithRegistry(registry),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		)
		opts = append(opts, server.WithMetrics(metrics, registry))
	}
	if cfg.Tracing.Enabled {
		opts = append(opts, server.WithTracing(middleware.NewTracing(
			middleware.WithTracerName(cfg.Tracing.Name),
		)))
	}

	srv, err := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout.Std(),
		WriteTimeout:    cfg.Server.WriteTimeout.Std(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
		MaxMessageBytes: cfg.Server.MaxMessageBytes,
		MaxSessions:     cfg.Server.MaxSessions,
		Mode:            cfg.Mode(),
		MetricsPath:     cfg.Metrics.Path,
	}, a.schema, opts...)
	if err != nil {
		return nil, errors.New("E304").Wrap(fmt.Errorf("configure server: %w", err))
	}
	return srv, nil
}
