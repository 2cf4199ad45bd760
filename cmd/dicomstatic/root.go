package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dicomstatic/internal/blob"
	"dicomstatic/internal/config"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "dicomstatic",
		Short:         "Static DICOMweb artifact tree toolkit",
		Long:          "dicomstatic ingests DICOM part-10 files into a static DICOMweb artifact tree,\nserves the tree over HTTP, and mirrors it to S3-compatible object storage.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a "+config.FileName+" file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newStoreCmd(opts),
		newServeCmd(opts),
		newListStudiesCmd(opts),
		newPublishCmd(opts),
	)
	return cmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (o *rootOptions) logger() *zap.Logger {
	build := zap.NewProduction
	if o.verbose {
		build = zap.NewDevelopment
	}
	logger, err := build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configPath)
}

// openTree builds the artifact tree store from the storage configuration.
// rootDir, when non-empty, overrides the configured filesystem root.
func openTree(ctx context.Context, cfg *config.Config, rootDir string) (blob.Store, error) {
	if rootDir == "" {
		rootDir = cfg.StaticWado.RootDir
	}
	return blob.Open(ctx, blob.Config{
		Driver:    blob.Driver(cfg.Storage.Driver),
		Root:      rootDir,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		PathStyle: cfg.Storage.PathStyle,
	})
}
