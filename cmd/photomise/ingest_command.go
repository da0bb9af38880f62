package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"photomise/internal/config"
	"photomise/internal/ingest"
	"photomise/internal/logging"
	"photomise/internal/store"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string

	cmd := &cobra.Command{
		Use:   "ingest <project>",
		Short: "File new photos into events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withProjectAndShared(args[0], func(cfg *config.Config, shared *store.SharedStore, project *store.ProjectStore, root string) error {
				assetsDir := dirFlag
				if assetsDir == "" {
					assetsDir = filepath.Join(root, "assets")
				} else if assetsDir, err = config.ExpandPath(assetsDir); err != nil {
					return err
				}

				pipeline := &ingest.Pipeline{
					Config:      cfg,
					Shared:      shared,
					Project:     project,
					ProjectRoot: root,
					Resolver:    &cliResolver{p: newPrompter()},
					Logger:      logger.With(logging.FieldComponent, "ingest", logging.FieldProject, project.Name()),
				}

				summary, err := pipeline.Run(cmd.Context(), assetsDir)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Ingested %d photos and %d videos", summary.Photos, summary.Videos)
				if summary.NewEvents > 0 || summary.NewLocations > 0 {
					fmt.Fprintf(out, " (%d new events, %d new locations)", summary.NewEvents, summary.NewLocations)
				}
				fmt.Fprintln(out)
				if summary.Duplicates > 0 {
					fmt.Fprintf(out, "Skipped %d duplicates\n", summary.Duplicates)
				}
				if summary.Skipped > 0 {
					fmt.Fprintf(out, "Skipped %d photos without usable metadata\n", summary.Skipped)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dirFlag, "dir", "", "Directory to scan (defaults to <project>/assets)")
	return cmd
}
