package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photomise/internal/config"
	"photomise/internal/store"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var photosFlag bool

	cmd := &cobra.Command{
		Use:   "events <project>",
		Short: "List a project's events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(args[0], func(cfg *config.Config, project *store.ProjectStore, root string) error {
				cmdCtx := cmd.Context()

				events, err := project.Events(cmdCtx)
				if err != nil {
					return err
				}
				if len(events) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No events yet. Run 'photomise ingest' first.")
					return nil
				}

				rows := make([][]string, 0, len(events))
				for _, ev := range events {
					platforms, err := project.PostedPlatforms(cmdCtx, ev.Name)
					if err != nil {
						return err
					}
					posted := "-"
					if len(platforms) > 0 {
						posted = strings.Join(platforms, ", ")
					}
					rows = append(rows, []string{
						ev.Name,
						ev.Location,
						formatDate(ev.Date),
						fmt.Sprintf("%d", len(ev.Photos)),
						posted,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Event", "Location", "Date", "Photos", "Posted"}, rows, 4))

				if photosFlag {
					for _, ev := range events {
						fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", ev.Name)
						for _, path := range ev.Photos {
							fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", path)
						}
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&photosFlag, "photos", false, "Also list each event's photos")
	return cmd
}
