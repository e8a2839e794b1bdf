package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/allocation/renderer"
	"github.com/google/subcommands"
)

type showCmd struct {
	json bool
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display the allocation dashboard" }
func (*showCmd) Usage() string {
	return `alloc show [-json]

  Values the holdings at the last market prices and compares them to the
  target allocation: totals in USD and TWD, the allocation table with the
  amount to buy or sell per bucket, the holdings and a chart.

  A bucket is on target within 2 points of its target fraction.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the report as JSON")
}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	provider, err := openProvider()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := Evaluate(ctx, provider)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.Markdown(renderer.NewDashboard(report)))
	return subcommands.ExitSuccess
}
