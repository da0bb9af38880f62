package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"photomise/internal/config"
	"photomise/internal/store"
)

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var deleteFlag bool

	cmd := &cobra.Command{
		Use:   "prune <project> <event>",
		Short: "Remove photos from an event",
		Long: `Remove photos from an event. Photos are chosen by number from the
event's list; an empty or invalid selection changes nothing. With
--delete the files are also removed from disk along with their photo and
ranking records.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(args[0], func(cfg *config.Config, project *store.ProjectStore, root string) error {
				cmdCtx := cmd.Context()
				out := cmd.OutOrStdout()
				p := newPrompter()

				ev, err := project.Event(cmdCtx, args[1])
				if err != nil {
					return err
				}
				if ev == nil {
					return fmt.Errorf("event %q not found", args[1])
				}
				if len(ev.Photos) == 0 {
					fmt.Fprintf(out, "Event %q has no photos\n", ev.Name)
					return nil
				}

				fmt.Fprintf(out, "Photos in %s:\n", ev.Name)
				for i, path := range ev.Photos {
					fmt.Fprintf(out, "  %d. %s\n", i+1, path)
				}

				answer, err := p.line("Remove which photos? (numbers, comma-separated, blank to abort): ")
				if err != nil {
					return err
				}
				selected, err := parseSelection(answer, len(ev.Photos))
				if err != nil {
					return err
				}
				if len(selected) == 0 {
					fmt.Fprintln(out, "Nothing removed")
					return nil
				}

				var doomed []string
				for _, idx := range selected {
					doomed = append(doomed, ev.Photos[idx-1])
				}

				verb := "Remove"
				if deleteFlag {
					verb = "Delete"
				}
				confirmed, err := p.yesNo(fmt.Sprintf("%s %d photos from %s?", verb, len(doomed), ev.Name), false)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(out, "Nothing removed")
					return nil
				}

				remove := make(map[string]bool, len(doomed))
				for _, path := range doomed {
					remove[path] = true
				}
				remaining := make([]string, 0, len(ev.Photos))
				for _, path := range ev.Photos {
					if !remove[path] {
						remaining = append(remaining, path)
					}
				}
				if err := project.SetEventPhotos(cmdCtx, ev.Name, remaining); err != nil {
					return err
				}

				for _, path := range doomed {
					if !deleteFlag {
						continue
					}
					if err := project.RemovePhoto(cmdCtx, path); err != nil {
						return err
					}
					full := filepath.Join(root, filepath.FromSlash(path))
					if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
						return fmt.Errorf("delete %s: %w", full, err)
					}
				}

				fmt.Fprintf(out, "Removed %d photos from %s\n", len(doomed), ev.Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&deleteFlag, "delete", false, "Also delete the files and their records")
	return cmd
}

// parseSelection turns "1,3" into 1-based indexes. Any out-of-range or
// malformed entry invalidates the whole selection so a typo removes
// nothing.
func parseSelection(input string, max int) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	var selected []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(input, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}
		if n < 1 || n > max {
			return nil, fmt.Errorf("selection %d is out of range", n)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		selected = append(selected, n)
	}
	return selected, nil
}
