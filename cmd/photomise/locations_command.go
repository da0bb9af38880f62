package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"photomise/internal/config"
	"photomise/internal/store"
)

func newLocationsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Manage the shared location index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List known locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withShared(func(cfg *config.Config, shared *store.SharedStore) error {
				locations, err := shared.Locations(cmd.Context())
				if err != nil {
					return err
				}
				if len(locations) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No locations yet")
					return nil
				}
				rows := make([][]string, 0, len(locations))
				for _, loc := range locations {
					rows = append(rows, []string{loc.Name, formatCoords(loc.Latitude, loc.Longitude)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Location", "Coordinates"}, rows))
				return nil
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a location",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withShared(func(cfg *config.Config, shared *store.SharedStore) error {
				if err := shared.RenameLocation(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q\n", args[0], args[1])
				fmt.Fprintln(cmd.OutOrStdout(), "Existing events keep the old name; new events will use the new one.")
				return nil
			})
		},
	}

	cmd.AddCommand(list)
	cmd.AddCommand(rename)
	return cmd
}
