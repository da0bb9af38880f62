package main

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"photomise/internal/bluesky"
	"photomise/internal/config"
	"photomise/internal/creds"
	"photomise/internal/logging"
	"photomise/internal/post"
	"photomise/internal/store"
)

const platformBluesky = "bluesky"

func newPostCommand(ctx *commandContext) *cobra.Command {
	var (
		eventFlag  string
		userFlag   string
		textFlag   string
		randomFlag bool
		allowFlag  bool
		dryRunFlag bool
	)

	cmd := &cobra.Command{
		Use:   "post <project>",
		Short: "Post an event's photos to Bluesky",
		Long: `Post an event's photos to Bluesky. Without --event the event is
chosen from those not yet posted; --random picks one without prompting,
which is what scheduled runs use. --allow widens the pool to events that
have already been posted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withProject(args[0], func(cfg *config.Config, project *store.ProjectStore, root string) error {
				cmdCtx := cmd.Context()
				p := newPrompter()

				ev, err := chooseEvent(cmd, project, p, eventFlag, randomFlag, allowFlag)
				if err != nil || ev == nil {
					return err
				}

				account, err := resolveAccount(cmd, project, p, userFlag)
				if err != nil {
					return err
				}

				password := ""
				if !dryRunFlag {
					password, err = resolvePassword(p, account)
					if err != nil {
						return err
					}
				}

				publisher := &post.Publisher{
					Project:     project,
					ProjectRoot: root,
					Client:      bluesky.New(cfg.Bluesky.Host),
					Logger:      logger.With(logging.FieldComponent, "post", logging.FieldProject, project.Name()),
				}

				record, err := publisher.Publish(cmdCtx, post.Request{
					Event:    ev,
					Platform: platformBluesky,
					Account:  account,
					Password: password,
					Text:     textFlag,
					DryRun:   dryRunFlag,
				})
				if err != nil {
					return err
				}
				if record == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Dry run: %s not posted\n", ev.Name)
					return nil
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Posted %s as %s\n", ev.Name, account)
				if record.Link != "" {
					fmt.Fprintln(cmd.OutOrStdout(), record.Link)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&eventFlag, "event", "", "Event to post")
	cmd.Flags().StringVar(&userFlag, "user", "", "Bluesky handle to post as")
	cmd.Flags().StringVar(&textFlag, "text", "", "Override the composed post text")
	cmd.Flags().BoolVar(&randomFlag, "random", false, "Pick an event at random instead of prompting")
	cmd.Flags().BoolVar(&allowFlag, "allow", false, "Include events that were already posted")
	cmd.Flags().BoolVar(&dryRunFlag, "dryrun", false, "Process everything but do not post or record")
	return cmd
}

func chooseEvent(cmd *cobra.Command, project *store.ProjectStore, p *prompter, eventFlag string, random, allow bool) (*store.Event, error) {
	cmdCtx := cmd.Context()

	if eventFlag != "" {
		ev, err := project.Event(cmdCtx, eventFlag)
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return nil, fmt.Errorf("event %q not found", eventFlag)
		}
		return ev, nil
	}

	var (
		pool []*store.Event
		err  error
	)
	if allow {
		pool, err = project.Events(cmdCtx)
	} else {
		pool, err = project.EventsWithoutPost(cmdCtx, platformBluesky)
	}
	if err != nil {
		return nil, err
	}

	var candidates []*store.Event
	for _, ev := range pool {
		if len(ev.Photos) > 0 {
			candidates = append(candidates, ev)
		}
	}
	if len(candidates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No events to post")
		return nil, nil
	}

	if random {
		return candidates[rand.Intn(len(candidates))], nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Events:")
	for i, ev := range candidates {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s (%s, %d photos)\n", i+1, ev.Name, formatDate(ev.Date), len(ev.Photos))
	}
	choice, ok, err := p.number("Post which event? ")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if choice < 1 || choice > len(candidates) {
		return nil, fmt.Errorf("selection %d is out of range", choice)
	}
	return candidates[choice-1], nil
}

func resolveAccount(cmd *cobra.Command, project *store.ProjectStore, p *prompter, userFlag string) (string, error) {
	cmdCtx := cmd.Context()

	account := userFlag
	if account == "" {
		stored, err := project.Account(cmdCtx, platformBluesky)
		if err != nil {
			return "", err
		}
		account = stored
	}
	if account == "" {
		answer, err := p.line("Bluesky handle: ")
		if err != nil {
			return "", err
		}
		if answer == "" {
			return "", fmt.Errorf("a Bluesky handle is required")
		}
		account = answer
	}

	if err := project.SetAccount(cmdCtx, platformBluesky, account); err != nil {
		return "", err
	}
	return account, nil
}

func resolvePassword(p *prompter, account string) (string, error) {
	password, err := creds.Get(account)
	if err == nil {
		return password, nil
	}
	if !errors.Is(err, creds.ErrNotFound) {
		return "", err
	}

	password, err = p.password(fmt.Sprintf("App password for %s: ", account))
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", fmt.Errorf("an app password is required")
	}
	if err := creds.Set(account, password); err != nil {
		return "", err
	}
	return password, nil
}
