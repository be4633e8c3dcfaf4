package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradetax"
	"github.com/etnz/tradetax/renderer"
	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	queryFlags
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "per symbol totals of positions and options" }
func (*summaryCmd) Usage() string {
	return `ttx summary [-symbol <text>] [-year <year> | -from <date>] [-scope reported|history] [-plain]

  Displays one line per symbol: short and long term gains, fees, the
  remaining position, and the option cash flows.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	c.queryFlags.SetFlags(f)
	f.StringVar(&c.scope, "scope", tradetax.NetReported.String(), "Legs added into the net realized amount (reported, history)")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	engine := tradetax.NewEngine(tradetax.WithCacheTTL(0))
	var positions, options tradetax.Report
	var g errgroup.Group
	g.Go(func() (err error) {
		positions, err = engine.Positions(ctx, book, q)
		if warnFailures(err) {
			return nil
		}
		return err
	})
	g.Go(func() (err error) {
		options, err = engine.Options(ctx, book, q)
		if warnFailures(err) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error computing summary: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.SummaryMarkdown(positions, options, *currency), c.plain)
	return subcommands.ExitSuccess
}
