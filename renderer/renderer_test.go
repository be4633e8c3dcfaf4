package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/tradetax"
	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// document is the structure of a rendered markdown report.
type document struct {
	headings []string
	tables   [][][]string // rows of cells, the header first
}

func parse(t *testing.T, src string) document {
	t.Helper()
	source := []byte(src)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(source))

	var doc document
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			doc.headings = append(doc.headings, strings.Repeat("#", v.Level)+" "+plain(v, source))
			return ast.WalkSkipChildren, nil
		case *east.Table:
			var rows [][]string
			for r := v.FirstChild(); r != nil; r = r.NextSibling() {
				var cells []string
				for c := r.FirstChild(); c != nil; c = c.NextSibling() {
					cells = append(cells, strings.TrimSpace(plain(c, source)))
				}
				rows = append(rows, cells)
			}
			doc.tables = append(doc.tables, rows)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("cannot walk markdown: %v", err)
	}
	return doc
}

// plain returns the text content of n.
func plain(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
		case *ast.String:
			b.Write(v.Value)
		default:
			b.WriteString(plain(c, source))
		}
	}
	return b.String()
}

var origin = time.Date(2022, time.January, 3, 15, 30, 0, 0, time.UTC)

func day(d int) time.Time { return origin.AddDate(0, 0, d) }

func positions() tradetax.Report {
	trades := make(tradetax.Trades)
	trades.Add(
		tradetax.Trade{Symbol: "AAPL", Date: day(0), Side: tradetax.Buy, Quantity: 10, AveragePrice: 100},
		tradetax.Trade{Symbol: "AAPL", Date: day(400), Side: tradetax.Sell, Quantity: 4, AveragePrice: 110, Fees: 0.25},
		tradetax.Trade{Symbol: "MSFT", Date: day(1), Side: tradetax.Buy, Quantity: 1, AveragePrice: 300},
		tradetax.Trade{Symbol: "MSFT", Date: day(2), Side: tradetax.Sell, Quantity: 1, AveragePrice: 280},
	)
	return tradetax.MatchPositions(trades, "", nil)
}

func options() tradetax.Report {
	trades := make(tradetax.OptionTrades)
	trades.Add(
		tradetax.OptionTrade{ChainSymbol: "SPY", Side: tradetax.Buy, CreatedAt: day(0), OpeningStrategy: "long_call", Price: 1.5},
		tradetax.OptionTrade{ChainSymbol: "SPY", Side: tradetax.Sell, CreatedAt: day(5), ClosingStrategy: "long_call", Price: 2},
	)
	return tradetax.MatchOptions(trades, "", nil)
}

func TestPositionsMarkdown(t *testing.T) {
	doc := parse(t, PositionsMarkdown(positions(), "USD"))

	if diff := cmp.Diff([]string{"# Capital Gains", "## AAPL", "## MSFT"}, doc.headings); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
	if len(doc.tables) != 2 {
		t.Fatalf("got %d tables, want one per symbol", len(doc.tables))
	}

	aapl := doc.tables[0]
	if diff := cmp.Diff([]string{"Date", "Event", "Quantity", "Price", "Amount", "Term"}, aapl[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	want := [][]string{
		{"2022-01-03 15:30", "Buy", "10", "$100.00", "", ""},
		{"2023-02-07 15:30", "Sell", "4", "$110.00", "", ""},
		{"2023-02-07 15:30", "Realized gain", "", "", "+$40.00", "long term (400 days)"},
		{"", "Fee", "", "", "-$1.00", ""},
		{"", "Remaining", "6", "", "", ""},
	}
	if diff := cmp.Diff(want, aapl[1:]); diff != "" {
		t.Errorf("AAPL rows mismatch (-want +got):\n%s", diff)
	}

	msft := doc.tables[1]
	if got := msft[3]; got[4] != "-$20.00" || got[5] != "short term (1 days)" {
		t.Errorf("MSFT gain row = %v", got)
	}
	// a sell without fees still shows its fee row.
	if diff := cmp.Diff([]string{"", "Fee", "", "", "-", ""}, msft[4]); diff != "" {
		t.Errorf("MSFT fee row mismatch (-want +got):\n%s", diff)
	}
	if len(msft) != 6 {
		t.Errorf("MSFT has %d rows, want header, buy, sell, gain, fee and remaining", len(msft))
	}
}

func TestPositionsMarkdown_Empty(t *testing.T) {
	out := PositionsMarkdown(tradetax.Report{}, "USD")
	if !strings.Contains(out, "No trade in the reporting window.") {
		t.Errorf("PositionsMarkdown() = %q", out)
	}
}

func TestOptionsMarkdown(t *testing.T) {
	doc := parse(t, OptionsMarkdown(options(), "USD"))

	if diff := cmp.Diff([]string{"# Option Trades", "## SPY"}, doc.headings); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
	if len(doc.tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(doc.tables))
	}
	want := [][]string{
		{"Date", "Leg", "Cash flow"},
		{"2022-01-03 15:30", "Buy to open", "-$150.00"},
		{"2022-01-08 15:30", "Sell to close", "+$200.00"},
	}
	if diff := cmp.Diff(want, doc.tables[0]); diff != "" {
		t.Errorf("SPY table mismatch (-want +got):\n%s", diff)
	}
}

func TestSummaryMarkdown(t *testing.T) {
	doc := parse(t, SummaryMarkdown(positions(), options(), "USD"))

	if diff := cmp.Diff([]string{"# Summary", "## Positions", "## Options"}, doc.headings); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
	if len(doc.tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(doc.tables))
	}

	want := [][]string{
		{"Symbol", "Short term", "Long term", "Fees", "Net", "Remaining", "Outcome"},
		{"AAPL", "-", "+$40.00", "$1.00", "+$39.00", "6", "gain"},
		{"MSFT", "-$20.00", "-", "$0.00", "-$20.00", "0", "loss"},
		{"Total", "-$20.00", "+$40.00", "$1.00", "+$19.00", "", "gain"},
	}
	if diff := cmp.Diff(want, doc.tables[0]); diff != "" {
		t.Errorf("positions table mismatch (-want +got):\n%s", diff)
	}
	if got := doc.tables[1][1]; got[0] != "SPY" || got[2] != "+$50.00" || got[3] != "gain" {
		t.Errorf("SPY row = %v", got)
	}
}

func TestSummaryMarkdown_Empty(t *testing.T) {
	doc := parse(t, SummaryMarkdown(nil, nil, "USD"))
	if diff := cmp.Diff([]string{"# Summary"}, doc.headings); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
	if len(doc.tables) != 0 {
		t.Errorf("got %d tables, want none", len(doc.tables))
	}
}
