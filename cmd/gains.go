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

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	queryFlags
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized gains of stock and crypto positions" }
func (*gainsCmd) Usage() string {
	return `ttx gains [-symbol <text>] [-year <year> | -from <date>] [-json] [-plain]

  Matches sells against open lots, most recent purchase first, and reports
  every buy, sell, realized gain, holding period and fee per symbol.

  Matching always runs over the whole history, -year and -from only select
  which events are reported.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	c.queryFlags.SetFlags(f)
	f.BoolVar(&c.json, "json", false, "Print the report as JSON")
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	report, err := tradetax.NewEngine(tradetax.WithCacheTTL(0)).Positions(ctx, book, q)
	if !warnFailures(err) {
		fmt.Fprintf(os.Stderr, "Error computing gains: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		if err := printJSON(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.PositionsMarkdown(report, *currency), c.plain)
	return subcommands.ExitSuccess
}
