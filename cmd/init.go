package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/allocation"
	"github.com/google/subcommands"
)

type initCmd struct {
	force bool
}

func (*initCmd) Name() string { return "init" }
func (*initCmd) Synopsis() string {
	return "create the holdings and targets files with a sample allocation"
}
func (*initCmd) Usage() string {
	return `alloc init [-f]

  Creates the holdings and the targets files with a sample allocation:
  crypto, ETF, stocks, options and cash in USD and TWD.
  Existing files are kept unless -f is set.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "f", false, "overwrite existing files")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	for _, file := range []string{HoldingsFile(), TargetsFile()} {
		_, err := os.Stat(file)
		if err == nil && !c.force {
			fmt.Fprintf(os.Stderr, "Error: %q already exists, use -f to overwrite it.\n", file)
			return subcommands.ExitFailure
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	if err := EncodeHoldings(allocation.DefaultHoldings()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := EncodeTargets(allocation.DefaultTargets()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Created %s and %s\n", HoldingsFile(), TargetsFile())
	return subcommands.ExitSuccess
}
