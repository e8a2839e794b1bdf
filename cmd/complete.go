package cmd

import (
	"flag"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors suggests values for flags that have a known domain, by flag name.
var flagPredictors = map[string]complete.Predictor{
	"holdings-file": predict.Files("*.json"),
	"targets-file":  predict.Files("*.json"),
	"cache-file":    predict.Files("*"),
	"provider":      predict.Set{"yahoo", "chart", "eodhd", "yahoo,chart", "yahoo,eodhd"},
	"u":             predict.Set{allocation.Shares.String(), allocation.AmountTWD.String(), allocation.AmountUSD.String()},
	"o":             predict.Files("*.xlsx"),
	"s":             predict.Set{"@every 1m", "@every 5m", "@every 15m", "@hourly"},
}

// Completion describes the command line for shell completion.
func Completion(root *flag.FlagSet) *complete.Command {
	c := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: predictors(root),
	}
	for _, name := range []string{"help", "flags", "commands"} {
		c.Sub[name] = &complete.Command{}
	}
	for _, cmd := range commands {
		c.Sub[cmd.Name()] = subcommandCompletion(cmd.Command)
	}
	return c
}

func subcommandCompletion(cmd subcommands.Command) *complete.Command {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	c := &complete.Command{Flags: predictors(fs)}
	switch cmd.(type) {
	case *topicCmd:
		topics, _ := docs.GetAllTopics()
		c.Args = predict.Set(topics)
	case *removeCmd:
		c.Args = complete.PredictFunc(func(string) []string {
			hs, err := DecodeHoldings()
			if err != nil {
				return nil
			}
			return hs.Names()
		})
	}
	return c
}

// predictors returns a predictor per flag. Boolean flags take no value.
func predictors(fs *flag.FlagSet) map[string]complete.Predictor {
	m := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			m[f.Name] = nil
			return
		}
		if p, ok := flagPredictors[f.Name]; ok {
			m[f.Name] = p
			return
		}
		m[f.Name] = predict.Something
	})
	return m
}
