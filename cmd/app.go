// Package cmd implements the ttx command line application.
package cmd

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/etnz/tradetax"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&gainsCmd{}, "reports")
	c.Register(&optionsCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")

	c.Register(&serveCmd{}, "server")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var tradesFiles = flag.String("trades", "", "Comma separated list of stock or crypto order exports (CSV, or JSON order dumps with a .json extension)")
var optionTradesFiles = flag.String("option-trades", "", "Comma separated list of option order exports (CSV)")
var currency = flag.String("currency", tradetax.DefaultCurrency, "Currency of the exports, used to format amounts")

// files splits a comma separated list of paths.
func files(list string) []string {
	var out []string
	for _, f := range strings.Split(list, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// DecodeTrades reads and merges all the stock and crypto exports.
func DecodeTrades() (tradetax.Trades, error) {
	trades := make(tradetax.Trades)
	for _, name := range files(*tradesFiles) {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		var t tradetax.Trades
		if strings.HasSuffix(strings.ToLower(name), ".json") {
			t, err = tradetax.ImportTradesJSON(f, "")
		} else {
			t, err = tradetax.ImportTrades(f)
		}
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(t) == 0 {
			log.Printf("warning, %s contains no trade", name)
		}
		trades.Merge(t)
	}
	return trades, nil
}

// DecodeOptionTrades reads and merges all the option exports.
func DecodeOptionTrades() (tradetax.OptionTrades, error) {
	options := make(tradetax.OptionTrades)
	for _, name := range files(*optionTradesFiles) {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		o, err := tradetax.ImportOptionTrades(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(o) == 0 {
			log.Printf("warning, %s contains no option trade", name)
		}
		options.Merge(o)
	}
	return options, nil
}

// DecodeBook loads all the exports into a single book.
func DecodeBook() (*tradetax.Book, error) {
	if len(files(*tradesFiles)) == 0 && len(files(*optionTradesFiles)) == 0 {
		return nil, fmt.Errorf("no export to load, use -trades or -option-trades")
	}
	trades, err := DecodeTrades()
	if err != nil {
		return nil, fmt.Errorf("could not load trades: %w", err)
	}
	options, err := DecodeOptionTrades()
	if err != nil {
		return nil, fmt.Errorf("could not load option trades: %w", err)
	}
	return tradetax.NewBook(trades, options), nil
}

// queryFlags are the report filters shared by the report commands.
type queryFlags struct {
	symbol string
	year   string
	from   string
	scope  string
	json   bool
	plain  bool
}

func (q *queryFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&q.symbol, "symbol", "", "Only report symbols containing this text (case insensitive)")
	f.StringVar(&q.year, "year", "", "Only report events of that year")
	f.StringVar(&q.from, "from", "", "Only report events of the 365 days starting at that date. See the user manual for supported date formats.")
	f.BoolVar(&q.plain, "plain", false, "Print raw markdown instead of rendering it for the terminal")
}

// Query converts the flags into an engine query.
func (q *queryFlags) Query() (tradetax.Query, error) {
	query := tradetax.Query{Symbol: tradetax.NormalizeSymbol(q.symbol)}
	if q.year != "" && q.from != "" {
		return query, fmt.Errorf("-year and -from flags cannot be used together")
	}
	var err error
	if query.Window, err = tradetax.ParseWindow(q.year + q.from); err != nil {
		return query, err
	}
	if query.Scope, err = tradetax.ParseNetScope(q.scope); err != nil {
		return query, err
	}
	return query, nil
}

// warnFailures prints the symbols that could not be reported, it returns
// false when err is not made of symbol failures only.
func warnFailures(err error) bool {
	if err == nil {
		return true
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		serr, ok := e.(*tradetax.SymbolError)
		if !ok {
			return false
		}
		fmt.Fprintf(os.Stderr, "Warning: %v\n", serr)
	}
	return true
}
