package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dicomstatic/internal/wado"
)

func newListStudiesCmd(root *rootOptions) *cobra.Command {
	var rootDir string
	cmd := &cobra.Command{
		Use:   "list-studies",
		Short: "List the study UIDs present in the artifact tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			store, err := openTree(ctx, cfg, rootDir)
			if err != nil {
				return err
			}
			studies, err := wado.NewRetriever(store).ListStudies(ctx)
			if err != nil {
				return err
			}
			for _, uid := range studies {
				fmt.Fprintln(cmd.OutOrStdout(), uid)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rootDir, "root", "", "artifact tree root (overrides config)")
	return cmd
}
