package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"photomise/internal/config"
	"photomise/internal/store"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	var (
		qualityFlag      int
		maxDimensionFlag int
		descriptionFlag  bool
		flavorFlag       bool
		autoEventFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "settings <project>",
		Short: "Show or change project settings",
		Long: `Show or change project settings. Without flags the current values
are printed. Flags you pass are stored; the rest keep their values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(args[0], func(cfg *config.Config, project *store.ProjectStore, root string) error {
				cmdCtx := cmd.Context()

				settings, err := effectiveSettings(cmdCtx, cfg, project)
				if err != nil {
					return err
				}

				flags := cmd.Flags()
				changed := false
				if flags.Changed("quality") {
					settings.Quality = qualityFlag
					changed = true
				}
				if flags.Changed("max-dimension") {
					settings.MaxDimension = maxDimensionFlag
					changed = true
				}
				if flags.Changed("description") {
					settings.Description = descriptionFlag
					changed = true
				}
				if flags.Changed("flavor") {
					settings.Flavor = flavorFlag
					changed = true
				}
				if flags.Changed("auto-event") {
					settings.AutoEvent = autoEventFlag
					changed = true
				}

				if changed {
					if err := project.UpsertSettings(cmdCtx, settings); err != nil {
						return err
					}
				}

				rows := [][]string{
					{"quality", fmt.Sprintf("%d", settings.Quality)},
					{"max_dimension", fmt.Sprintf("%d", settings.MaxDimension)},
					{"description", formatBool(settings.Description)},
					{"flavor", formatBool(settings.Flavor)},
					{"auto_event", formatBool(settings.AutoEvent)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows, 2))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&qualityFlag, "quality", 0, "Default JPEG quality 1-100")
	cmd.Flags().IntVar(&maxDimensionFlag, "max-dimension", 0, "Longest side after downscaling")
	cmd.Flags().BoolVar(&descriptionFlag, "description", false, "Prompt for alt text during adjust")
	cmd.Flags().BoolVar(&flavorFlag, "flavor", false, "Append per-photo flavor text to posts")
	cmd.Flags().BoolVar(&autoEventFlag, "auto-event", false, "Name new events automatically")
	return cmd
}
