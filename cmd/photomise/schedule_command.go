package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"photomise/internal/config"
	"photomise/internal/schedule"
	"photomise/internal/store"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var (
		timesFlag  string
		outputFlag string
	)

	cmd := &cobra.Command{
		Use:   "schedule <project>",
		Short: "Write a launchd job that posts on a timer",
		Long: `Write a launchd property list that runs 'photomise post <project>
--random' on a daily schedule. By default the plist lands in
~/Library/LaunchAgents; load it with launchctl.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(args[0], func(cfg *config.Config, project *store.ProjectStore, root string) error {
				spec, err := schedule.ParseTimes(timesFlag)
				if err != nil {
					return err
				}

				executable, err := os.Executable()
				if err != nil {
					return fmt.Errorf("resolve executable: %w", err)
				}

				data, err := schedule.Plist(schedule.Job{
					Project:    project.Name(),
					Executable: executable,
					Args:       []string{"post", project.Name(), "--random"},
					LogDir:     cfg.Paths.LogDir,
				}, spec)
				if err != nil {
					return err
				}

				target := outputFlag
				if target == "" {
					home, err := os.UserHomeDir()
					if err != nil {
						return fmt.Errorf("resolve home directory: %w", err)
					}
					target = filepath.Join(home, "Library", "LaunchAgents", schedule.Label(project.Name())+".plist")
				} else if target == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}

				if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
					return fmt.Errorf("create plist directory: %w", err)
				}
				if err := os.WriteFile(target, data, 0o644); err != nil {
					return fmt.Errorf("write plist: %w", err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
				fmt.Fprintf(cmd.OutOrStdout(), "Load it with: launchctl load %s\n", target)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&timesFlag, "times", "", "Daily schedule as \"mm hh[,hh...]\", e.g. \"30 9,18\"")
	cmd.Flags().StringVar(&outputFlag, "output", "", "Plist destination ('-' for stdout)")
	_ = cmd.MarkFlagRequired("times")
	return cmd
}
