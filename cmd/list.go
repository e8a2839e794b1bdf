package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/allocation/renderer"
	"github.com/google/subcommands"
)

type listCmd struct{}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the holdings and the target allocation" }
func (*listCmd) Usage() string {
	return `alloc list

  Lists the holdings and the target allocation as they are stored, without
  fetching any price. Use 'alloc show' to value them.
`
}

func (*listCmd) SetFlags(_ *flag.FlagSet) {}

func (*listCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	hs, err := DecodeHoldings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	ta, err := DecodeTargets()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.HoldingsMarkdown(hs) + "\n" + renderer.TargetsMarkdown(ta))
	return subcommands.ExitSuccess
}
