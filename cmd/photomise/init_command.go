package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"photomise/internal/config"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	var pathFlag string

	cmd := &cobra.Command{
		Use:   "init <project>",
		Short: "Register a project and create its directory layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			root := pathFlag
			if root == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("resolve working directory: %w", err)
				}
				root = filepath.Join(cwd, projectKey(args[0]))
			}
			expanded, err := config.ExpandPath(root)
			if err != nil {
				return err
			}

			for _, dir := range []string{expanded, filepath.Join(expanded, "assets")} {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create project directory: %w", err)
				}
			}

			key, err := cfg.SetProject(args[0], expanded)
			if err != nil {
				return err
			}
			if err := cfg.Save(ctx.configPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered project %q at %s\n", key, expanded)
			fmt.Fprintf(cmd.OutOrStdout(), "Drop photos into %s and run 'photomise ingest %s'\n", filepath.Join(expanded, "assets"), key)
			return nil
		},
	}

	cmd.Flags().StringVar(&pathFlag, "path", "", "Project directory (defaults to ./<project>)")
	return cmd
}
