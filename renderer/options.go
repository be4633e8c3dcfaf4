package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/tradetax"
	md "github.com/nao1215/markdown"
)

// OptionsMarkdown renders an option report, one section per chain symbol.
func OptionsMarkdown(r tradetax.Report, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Option Trades")
	if len(r) == 0 {
		doc.PlainText("No option trade in the reporting window.")
		return doc.String()
	}
	doc.PlainText(fmt.Sprintf("Total net realized: %s", money(r.NetRealized(), currency).SignedString()))

	for _, symbol := range r.Symbols() {
		var rows [][]string
		var net float64
		for _, e := range r[symbol] {
			switch v := e.(type) {
			case tradetax.BuyToOpen:
				rows = append(rows, []string{v.Time.Format(timeFormat), "Buy to open", money(v.Amount, currency).SignedString()})
			case tradetax.SellToOpen:
				rows = append(rows, []string{v.Time.Format(timeFormat), "Sell to open", money(v.Amount, currency).SignedString()})
			case tradetax.BuyToClose:
				rows = append(rows, []string{v.Time.Format(timeFormat), "Buy to close", money(v.Amount, currency).SignedString()})
			case tradetax.SellToClose:
				rows = append(rows, []string{v.Time.Format(timeFormat), "Sell to close", money(v.Amount, currency).SignedString()})
			case tradetax.NetRealized:
				net = v.Total
			}
		}

		doc.H2(symbol)
		doc.PlainText(fmt.Sprintf("Net realized: %s", money(net, currency).SignedString()))
		doc.Table(md.TableSet{
			Header: []string{"Date", "Leg", "Cash flow"},
			Rows:   rows,
		})
	}
	return doc.String()
}
