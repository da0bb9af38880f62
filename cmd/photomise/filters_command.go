package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"photomise/internal/config"
	"photomise/internal/store"
)

func newFiltersCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Manage shared enhancement presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List filter presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withShared(func(cfg *config.Config, shared *store.SharedStore) error {
				filters, err := shared.Filters(cmd.Context())
				if err != nil {
					return err
				}
				if len(filters) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No filters yet")
					return nil
				}
				rows := make([][]string, 0, len(filters))
				for _, f := range filters {
					rows = append(rows, []string{
						f.Name,
						formatFloat(f.Brightness),
						formatFloat(f.Contrast),
						formatFloat(f.Color),
						formatFloat(f.Sharpness),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Filter", "Brightness", "Contrast", "Color", "Sharpness"}, rows, 2, 3, 4, 5))
				return nil
			})
		},
	}

	var (
		brightnessFlag float64
		contrastFlag   float64
		colorFlag      float64
		sharpnessFlag  float64
	)
	set := &cobra.Command{
		Use:   "set <name>",
		Short: "Create or update a filter preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withShared(func(cfg *config.Config, shared *store.SharedStore) error {
				f := store.Filter{
					Name:       args[0],
					Brightness: brightnessFlag,
					Contrast:   contrastFlag,
					Color:      colorFlag,
					Sharpness:  sharpnessFlag,
				}
				if err := shared.UpsertFilter(cmd.Context(), f); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved filter %q\n", f.Name)
				return nil
			})
		},
	}
	set.Flags().Float64Var(&brightnessFlag, "brightness", 1.0, "Brightness factor")
	set.Flags().Float64Var(&contrastFlag, "contrast", 1.0, "Contrast factor")
	set.Flags().Float64Var(&colorFlag, "color", 1.0, "Color saturation factor")
	set.Flags().Float64Var(&sharpnessFlag, "sharpness", 1.0, "Sharpness factor")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a filter preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withShared(func(cfg *config.Config, shared *store.SharedStore) error {
				if err := shared.DeleteFilter(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted filter %q\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(list)
	cmd.AddCommand(set)
	cmd.AddCommand(del)
	return cmd
}
