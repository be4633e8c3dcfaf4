package renderer

import (
	"bytes"

	"github.com/etnz/tradetax"
	md "github.com/nao1215/markdown"
)

// SummaryMarkdown renders per symbol totals of a position and an option
// report.
func SummaryMarkdown(positions, options tradetax.Report, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Summary")

	if len(positions) > 0 {
		doc.H2("Positions")
		var rows [][]string
		for _, s := range append(positions.Summaries(), positions.Total()) {
			remaining := quantity(s.Remaining)
			if s.Symbol == "Total" {
				remaining = ""
			}
			rows = append(rows, []string{
				s.Symbol,
				money(s.ShortTerm, currency).SignedString(),
				money(s.LongTerm, currency).SignedString(),
				money(s.Fees, currency).String(),
				money(s.Realized-s.Fees, currency).SignedString(),
				remaining,
				s.Outcome().String(),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Symbol", "Short term", "Long term", "Fees", "Net", "Remaining", "Outcome"},
			Rows:   rows,
		})
	}

	if len(options) > 0 {
		doc.H2("Options")
		var rows [][]string
		for _, s := range append(options.Summaries(), options.Total()) {
			rows = append(rows, []string{
				s.Symbol,
				money(s.CashFlow, currency).SignedString(),
				money(s.NetRealized, currency).SignedString(),
				s.Outcome().String(),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Symbol", "Cash flow", "Net realized", "Outcome"},
			Rows:   rows,
		})
	}

	if len(positions) == 0 && len(options) == 0 {
		doc.PlainText("Nothing to report.")
	}
	return doc.String()
}
