package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradetax"
	"github.com/etnz/tradetax/renderer"
	"github.com/google/subcommands"
)

// optionsCmd holds the flags for the 'options' subcommand.
type optionsCmd struct {
	queryFlags
}

func (*optionsCmd) Name() string     { return "options" }
func (*optionsCmd) Synopsis() string { return "cash flows of option legs" }
func (*optionsCmd) Usage() string {
	return `ttx options [-symbol <text>] [-year <year> | -from <date>] [-scope reported|history] [-json] [-plain]

  Reports the cash flow of every opening and closing option leg, and the net
  realized amount per chain symbol. One contract is worth 100 times its price.

  With -scope reported (the default) the net realized amount only adds the
  reported legs, with -scope history it adds every leg of the chain symbol.
`
}

func (c *optionsCmd) SetFlags(f *flag.FlagSet) {
	c.queryFlags.SetFlags(f)
	f.StringVar(&c.scope, "scope", tradetax.NetReported.String(), "Legs added into the net realized amount (reported, history)")
	f.BoolVar(&c.json, "json", false, "Print the report as JSON")
}

func (c *optionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	q, err := c.Query()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	book, err := DecodeBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	report, err := tradetax.NewEngine(tradetax.WithCacheTTL(0)).Options(ctx, book, q)
	if !warnFailures(err) {
		fmt.Fprintf(os.Stderr, "Error computing option cash flows: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		if err := printJSON(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.OptionsMarkdown(report, *currency), c.plain)
	return subcommands.ExitSuccess
}
