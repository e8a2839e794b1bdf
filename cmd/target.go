package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/renderer"
	"github.com/google/subcommands"
	"github.com/samber/lo"
)

type targetCmd struct {
	bucket   string
	fraction float64
	members  string
	remove   bool
}

func (*targetCmd) Name() string     { return "target" }
func (*targetCmd) Synopsis() string { return "set or remove a target bucket" }
func (*targetCmd) Usage() string {
	return `alloc target -b <bucket> -f <fraction> [-m <member,...>]
alloc target -b <bucket> -rm

  Sets the target fraction of a bucket, or removes it with -rm.

  A bucket is worth the holding with the same name. Otherwise it groups the
  holdings whose name contains the bucket name, or whose category is the
  bucket name. -m lists the holdings of the bucket explicitly instead.

Usage Examples:
$ alloc target -b VEA -f 0.2
$ alloc target -b CASH -f 0.25 -m CASH_USD,CASH_TWD
`
}

func (c *targetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.bucket, "b", "", "Bucket name")
	f.Float64Var(&c.fraction, "f", 0, "Target fraction of the total value, 0.2 for 20%")
	f.StringVar(&c.members, "m", "", "Comma separated holding names of the bucket")
	f.BoolVar(&c.remove, "rm", false, "Remove the bucket")
}

func (c *targetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.bucket == "" {
		fmt.Fprintln(os.Stderr, "Error: missing bucket name (-b)")
		return subcommands.ExitUsageError
	}
	if c.fraction < 0 || c.fraction > 1 {
		fmt.Fprintf(os.Stderr, "Error: fraction must be between 0 and 1, got %v\n", c.fraction)
		return subcommands.ExitUsageError
	}

	ta, err := DecodeTargets()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.remove {
		err = ta.Remove(c.bucket)
	} else {
		members := lo.Compact(lo.Map(strings.Split(c.members, ","), func(s string, _ int) string { return strings.TrimSpace(s) }))
		err = ta.Set(allocation.Target{Bucket: c.bucket, Fraction: allocation.P(c.fraction), Members: members})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := EncodeTargets(ta); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.TargetsMarkdown(ta))
	return subcommands.ExitSuccess
}
