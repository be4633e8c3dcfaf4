// Package renderer renders tradetax reports as markdown documents.
package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/tradetax"
	md "github.com/nao1215/markdown"
)

const timeFormat = "2006-01-02 15:04"

// PositionsMarkdown renders a position report, one section per symbol.
func PositionsMarkdown(r tradetax.Report, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Capital Gains")
	if len(r) == 0 {
		doc.PlainText("No trade in the reporting window.")
		return doc.String()
	}
	doc.PlainText(fmt.Sprintf("Total capital earnings: %s", money(r.RealizedGains(), currency).SignedString()))

	for _, symbol := range r.Symbols() {
		events := r[symbol]
		s := tradetax.Summarize(symbol, events)

		doc.H2(symbol)
		doc.PlainText(fmt.Sprintf("Outcome: %s. Realized %s, fees %s, remaining %s.",
			s.Outcome(),
			money(s.Realized, currency).SignedString(),
			money(s.Fees, currency),
			quantity(s.Remaining),
		))
		doc.Table(md.TableSet{
			Header: []string{"Date", "Event", "Quantity", "Price", "Amount", "Term"},
			Rows:   positionRows(events, currency),
		})
	}
	return doc.String()
}

func positionRows(events []tradetax.Event, currency string) [][]string {
	var rows [][]string
	// a holding period is rendered with the gain that follows it.
	var term string
	for _, e := range events {
		switch v := e.(type) {
		case tradetax.BuyEvent:
			rows = append(rows, []string{v.Time.Format(timeFormat), "Buy", quantity(v.Quantity), money(v.Price, currency).String(), "", ""})
		case tradetax.SellEvent:
			rows = append(rows, []string{v.Time.Format(timeFormat), "Sell", quantity(v.Quantity), money(v.Price, currency).String(), "", ""})
		case tradetax.HoldingPeriod:
			term = holdingTerm(v)
		case tradetax.RealizedGain:
			rows = append(rows, []string{v.Time.Format(timeFormat), "Realized gain", "", "", money(v.Amount, currency).SignedString(), term})
			term = ""
		case tradetax.Fee:
			rows = append(rows, []string{"", "Fee", "", "", money(v.Amount, currency).Neg().SignedString(), ""})
		case tradetax.UnmatchedSell:
			rows = append(rows, []string{v.Time.Format(timeFormat), "Unmatched sell", quantity(v.Quantity), "", "", ""})
		case tradetax.RemainingPosition:
			rows = append(rows, []string{"", "Remaining", quantity(v.Quantity), "", "", ""})
		}
	}
	return rows
}

// holdingTerm labels a holding period as short or long term.
func holdingTerm(h tradetax.HoldingPeriod) string {
	if h.LongTerm() {
		return fmt.Sprintf("long term (%d days)", h.Days())
	}
	return fmt.Sprintf("short term (%d days)", h.Days())
}

func money(v float64, currency string) tradetax.Money { return tradetax.M(v, currency) }

func quantity(q float64) string { return fmt.Sprintf("%g", q) }
