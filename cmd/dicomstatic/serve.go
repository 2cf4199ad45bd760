package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"dicomstatic/internal/api"
	"dicomstatic/internal/wado"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		host    string
		port    int
		rootDir string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the artifact tree over HTTP",
		Long:  "serve runs the DICOMweb retrieval API over the artifact tree, exposing\nstudy/series/instance listings, metadata, pixel data, frames, renders,\nthumbnails, a STOW-style upload endpoint, and Prometheus metrics.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if host == "" {
				host = cfg.Server.Host
			}
			if port == 0 {
				port = cfg.Server.Port
			}
			if rootDir == "" {
				rootDir = cfg.Server.RootDir
			}
			logger := root.logger()
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := openTree(ctx, cfg, rootDir)
			if err != nil {
				return err
			}
			registry := prometheus.NewRegistry()
			recorder, err := wado.NewPrometheusMetricsRecorder(registry)
			if err != nil {
				return err
			}
			archive, err := wado.NewArchive(ctx, store, wado.WithLogger(logger), wado.WithMetrics(recorder))
			if err != nil {
				return err
			}
			retriever := wado.NewRetriever(store, wado.WithLogger(logger), wado.WithMetrics(recorder))

			srv := api.New(fmt.Sprintf("%s:%d", host, port), archive, retriever,
				api.WithLogger(logger),
				api.WithGatherer(registry),
			)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	cmd.Flags().StringVar(&rootDir, "root", "", "artifact tree root (overrides config)")
	return cmd
}
