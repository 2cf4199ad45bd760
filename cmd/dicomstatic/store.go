package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dicomstatic/internal/dicomfile"
	"dicomstatic/internal/wado"
)

func newStoreCmd(root *rootOptions) *cobra.Command {
	var rootDir string
	cmd := &cobra.Command{
		Use:   "store FILE...",
		Short: "Ingest DICOM files into the artifact tree",
		Long:  "store parses each DICOM part-10 file, writes the derived artifact set into\nthe tree, and prints one study/series/instance identity line per instance.\nDirectory arguments are walked recursively.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			logger := root.logger()
			defer logger.Sync() //nolint:errcheck

			store, err := openTree(ctx, cfg, rootDir)
			if err != nil {
				return err
			}
			archive, err := wado.NewArchive(ctx, store, wado.WithLogger(logger))
			if err != nil {
				return err
			}

			files, err := expandPaths(args)
			if err != nil {
				return err
			}
			stored := 0
			for _, file := range files {
				obj, err := dicomfile.ParseFile(file)
				if err != nil {
					logger.Warn("skipping unparseable file", zap.String("file", file), zap.Error(err))
					continue
				}
				id, err := archive.Ingest(ctx, obj)
				if err != nil {
					return fmt.Errorf("store %s: %w", file, err)
				}
				stored++
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", id.StudyUID, id.SeriesUID, id.InstanceUID)
			}
			if stored == 0 {
				return fmt.Errorf("no DICOM instances stored from %d input file(s)", len(files))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rootDir, "root", "", "artifact tree root (overrides config)")
	return cmd
}

// expandPaths resolves the argument list into concrete files, walking
// directories depth-first in lexical order.
func expandPaths(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
