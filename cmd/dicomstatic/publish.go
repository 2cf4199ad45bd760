package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dicomstatic/internal/blob"
	"dicomstatic/internal/mirror"
)

func newPublishCmd(root *rootOptions) *cobra.Command {
	var (
		rootDir   string
		bucket    string
		region    string
		endpoint  string
		pathStyle bool
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Mirror the artifact tree to S3-compatible object storage",
		Long:  "publish copies every artifact from the local tree into an S3 bucket,\noverwriting stale objects, so the tree can be served from object storage.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if bucket == "" {
				bucket = cfg.Storage.Bucket
			}
			if region == "" {
				region = cfg.Storage.Region
			}
			if endpoint == "" {
				endpoint = cfg.Storage.Endpoint
			}
			if !cmd.Flags().Changed("path-style") {
				pathStyle = cfg.Storage.PathStyle
			}
			if bucket == "" {
				return errors.New("publish requires a bucket (--bucket or storageConfig.bucket)")
			}
			logger := root.logger()
			defer logger.Sync() //nolint:errcheck

			if rootDir == "" {
				rootDir = cfg.StaticWado.RootDir
			}
			src, err := blob.NewFilesystem(rootDir)
			if err != nil {
				return err
			}
			dst, err := blob.NewS3(ctx, blob.S3Config{
				Region:    region,
				Bucket:    bucket,
				Endpoint:  endpoint,
				PathStyle: pathStyle,
			})
			if err != nil {
				return err
			}
			count, err := mirror.Sync(ctx, src, dst, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d artifacts to s3://%s\n", count, bucket)
			return nil
		},
	}
	cmd.Flags().StringVar(&rootDir, "root", "", "artifact tree root (overrides config)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "destination bucket (overrides config)")
	cmd.Flags().StringVar(&region, "region", "", "bucket region (overrides config)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "S3 endpoint for MinIO-style targets (overrides config)")
	cmd.Flags().BoolVar(&pathStyle, "path-style", false, "use path-style bucket addressing (overrides config)")
	return cmd
}
