package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct{}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "start an interactive session with the AI allocation advisor"
}
func (*assistCmd) Usage() string {
	return `alloc assist [<question>...]

  Starts an interactive session with the AI advisor. It reads the current
  allocation and can search for news about the holdings.

  Requires the GEMINI_API_KEY (or GOOGLE_API_KEY) environment variable.
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initialPrompt := strings.Join(f.Args(), " ")

	provider, err := openProvider()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	source := func(ctx context.Context) (*allocation.Report, error) { return Evaluate(ctx, provider) }
	a := agent.New(stdout, os.Stdin, source, agent.NewTrader())
	a.Format = renderMarkdown

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Advisor failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
