package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"photomise/internal/config"
	"photomise/internal/store"
)

func newAdjustCommand(ctx *commandContext) *cobra.Command {
	var (
		rotationFlag    int
		qualityFlag     int
		brightnessFlag  float64
		contrastFlag    float64
		colorFlag       float64
		sharpnessFlag   float64
		descriptionFlag string
		flavorFlag      string
		filterFlag      string
		saveFilterFlag  string
	)

	cmd := &cobra.Command{
		Use:   "adjust <project> <photo>",
		Short: "Set a photo's processing parameters",
		Long: `Set a photo's processing parameters. Only flags you pass change;
everything else keeps its stored value. --filter applies a shared preset
before individual flags, and --save-filter stores the resulting
enhancement values as a new preset.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProjectAndShared(args[0], func(cfg *config.Config, shared *store.SharedStore, project *store.ProjectStore, root string) error {
				cmdCtx := cmd.Context()
				path := args[1]

				// Old databases keyed photos by absolute path; converge
				// on the relative key before writing.
				rec, legacy, err := project.LookupPhoto(cmdCtx, path, filepath.Join(root, filepath.FromSlash(path)))
				if err != nil {
					return err
				}
				if legacy {
					legacyPath := rec.Path
					rec.Path = path
					if err := project.MigratePhoto(cmdCtx, legacyPath, *rec); err != nil {
						return err
					}
				}
				if rec == nil {
					settings, err := effectiveSettings(cmdCtx, cfg, project)
					if err != nil {
						return err
					}
					fresh := store.DefaultPhoto(path, settings)
					rec = &fresh
				}

				if filterFlag != "" {
					preset, err := shared.Filter(cmdCtx, filterFlag)
					if err != nil {
						return err
					}
					if preset == nil {
						return fmt.Errorf("filter %q not found", filterFlag)
					}
					rec.Brightness = preset.Brightness
					rec.Contrast = preset.Contrast
					rec.Color = preset.Color
					rec.Sharpness = preset.Sharpness
				}

				flags := cmd.Flags()
				if flags.Changed("rotation") {
					rec.Rotation = rotationFlag
				}
				if flags.Changed("quality") {
					rec.Quality = qualityFlag
				}
				if flags.Changed("brightness") {
					rec.Brightness = brightnessFlag
				}
				if flags.Changed("contrast") {
					rec.Contrast = contrastFlag
				}
				if flags.Changed("color") {
					rec.Color = colorFlag
				}
				if flags.Changed("sharpness") {
					rec.Sharpness = sharpnessFlag
				}
				if flags.Changed("description") {
					rec.Description = descriptionFlag
				}
				if flags.Changed("flavor") {
					rec.Flavor = flavorFlag
				}

				if err := project.UpsertPhoto(cmdCtx, *rec); err != nil {
					return err
				}

				if saveFilterFlag != "" {
					err := shared.UpsertFilter(cmdCtx, store.Filter{
						Name:       saveFilterFlag,
						Brightness: rec.Brightness,
						Contrast:   rec.Contrast,
						Color:      rec.Color,
						Sharpness:  rec.Sharpness,
					})
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Saved filter %q\n", saveFilterFlag)
				}

				rows := [][]string{
					{"rotation", fmt.Sprintf("%d", rec.Rotation)},
					{"quality", fmt.Sprintf("%d", rec.Quality)},
					{"brightness", formatFloat(rec.Brightness)},
					{"contrast", formatFloat(rec.Contrast)},
					{"color", formatFloat(rec.Color)},
					{"sharpness", formatFloat(rec.Sharpness)},
					{"description", rec.Description},
					{"flavor", rec.Flavor},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Parameter", "Value"}, rows, 2))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&rotationFlag, "rotation", 0, "Rotation in degrees (multiples of 90)")
	cmd.Flags().IntVar(&qualityFlag, "quality", 0, "JPEG quality 1-100")
	cmd.Flags().Float64Var(&brightnessFlag, "brightness", 1.0, "Brightness factor")
	cmd.Flags().Float64Var(&contrastFlag, "contrast", 1.0, "Contrast factor")
	cmd.Flags().Float64Var(&colorFlag, "color", 1.0, "Color saturation factor")
	cmd.Flags().Float64Var(&sharpnessFlag, "sharpness", 1.0, "Sharpness factor")
	cmd.Flags().StringVar(&descriptionFlag, "description", "", "Alt text for the photo")
	cmd.Flags().StringVar(&flavorFlag, "flavor", "", "Flavor text appended to the post")
	cmd.Flags().StringVar(&filterFlag, "filter", "", "Apply a shared filter preset")
	cmd.Flags().StringVar(&saveFilterFlag, "save-filter", "", "Save the resulting values as a preset")
	return cmd
}
