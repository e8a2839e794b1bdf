package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/allocation/market"
	"github.com/etnz/allocation/renderer"
	"github.com/google/subcommands"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

type watchCmd struct {
	schedule string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "display the dashboard again on a schedule" }
func (*watchCmd) Usage() string {
	return `alloc watch [-s <schedule>]

  Displays the dashboard now, and then again on every tick of the schedule
  until interrupted. The holdings and targets files are read again on every
  tick, so that edits show up.

  Schedule examples:
    "@every 5m"       every 5 minutes (default)
    "*/15 9-16 * * 1-5"  every quarter of an hour, during market hours
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.schedule, "s", "@every 5m", "cron schedule")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	provider, err := openProvider()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	// the first display must succeed, later failures are only logged.
	if err := display(ctx, provider); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	sched := cron.New()
	if _, err := sched.AddFunc(c.schedule, func() {
		if err := display(ctx, provider); err != nil {
			log.Error().Err(err).Msg("refresh failed")
		}
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid schedule %q: %v\n", c.schedule, err)
		return subcommands.ExitUsageError
	}
	sched.Start()
	log.Info().Str("schedule", c.schedule).Msg("watching, press Ctrl+C to stop")

	<-ctx.Done()
	<-sched.Stop().Done()
	return subcommands.ExitSuccess
}

func display(ctx context.Context, provider market.Provider) error {
	report, err := Evaluate(ctx, provider)
	if err != nil {
		return err
	}
	printMarkdown(renderer.Markdown(renderer.NewDashboard(report)))
	return nil
}
