package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"photomise/internal/cluster"
	"photomise/internal/config"
	"photomise/internal/store"
)

func newRankCommand(ctx *commandContext) *cobra.Command {
	var (
		orderFlag    string
		unrankedFlag bool
	)

	cmd := &cobra.Command{
		Use:   "rank <project> <event>",
		Short: "Order an event's photos for posting",
		Long: `Order an event's photos for posting. Platforms cap attachments, so
events with more photos than the cap need a ranking before they can be
posted. With --order the ranking is taken from the comma-separated photo
list; otherwise each photo is prompted for a rank number. --unranked
skips photos that already carry a rank.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(args[0], func(cfg *config.Config, project *store.ProjectStore, root string) error {
				cmdCtx := cmd.Context()

				ev, err := project.Event(cmdCtx, args[1])
				if err != nil {
					return err
				}
				if ev == nil {
					return fmt.Errorf("event %q not found", args[1])
				}
				if len(ev.Photos) == 0 {
					return fmt.Errorf("event %q has no photos", ev.Name)
				}

				if orderFlag != "" {
					return rankFromOrder(cmd, project, ev, orderFlag)
				}
				return rankInteractively(cmd, project, ev, unrankedFlag)
			})
		},
	}

	cmd.Flags().StringVar(&orderFlag, "order", "", "Comma-separated photo paths, best first")
	cmd.Flags().BoolVar(&unrankedFlag, "unranked", false, "Only prompt for photos without a rank")
	return cmd
}

func rankFromOrder(cmd *cobra.Command, project *store.ProjectStore, ev *store.Event, order string) error {
	cmdCtx := cmd.Context()

	var paths []string
	for _, part := range strings.Split(order, ",") {
		path := strings.TrimSpace(part)
		if path == "" {
			continue
		}
		if !ev.ContainsPhoto(path) {
			return fmt.Errorf("photo %q is not in event %q", path, ev.Name)
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return fmt.Errorf("--order lists no photos")
	}

	for i, path := range paths {
		r := store.Ranking{Event: ev.Name, Path: path, Rank: i + 1}
		if err := project.UpsertRanking(cmdCtx, r); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Ranked %d photos in %s\n", len(paths), ev.Name)
	return nil
}

func rankInteractively(cmd *cobra.Command, project *store.ProjectStore, ev *store.Event, unrankedOnly bool) error {
	cmdCtx := cmd.Context()
	p := newPrompter()
	resolver := &cliResolver{p: p}

	fmt.Fprintf(cmd.OutOrStdout(), "Ranking photos in %s (lower is better, blank to skip):\n", ev.Name)
	ranked := 0
	for _, path := range ev.Photos {
		if unrankedOnly {
			if _, found, err := project.RankingByPath(cmdCtx, path); err != nil {
				return err
			} else if found {
				continue
			}
		}

		// A photo claimed by several events must be settled before a
		// rank can be attributed to one of them.
		holders, err := project.EventsWithPhoto(cmdCtx, path)
		if err != nil {
			return err
		}
		if len(holders) > 1 {
			keep, err := resolver.KeepEvent(path, holders)
			if err != nil {
				return err
			}
			if err := cluster.ResolveSharedPhoto(cmdCtx, project, holders, path, keep); err != nil {
				if errors.Is(err, cluster.ErrInvalidSelection) {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s left unresolved, skipping\n", path)
					continue
				}
				return err
			}
			if keep < 1 || holders[keep-1].Name != ev.Name {
				continue
			}
		}

		answer, err := p.line(fmt.Sprintf("  %s: ", path))
		if err != nil {
			return err
		}
		if answer == "" {
			continue
		}
		rank, err := strconv.Atoi(answer)
		if err != nil || rank < 1 {
			return fmt.Errorf("rank must be a positive number, got %q", answer)
		}
		r := store.Ranking{Event: ev.Name, Path: path, Rank: rank}
		if err := project.UpsertRanking(cmdCtx, r); err != nil {
			return err
		}
		ranked++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Ranked %d photos in %s\n", ranked, ev.Name)
	return nil
}
