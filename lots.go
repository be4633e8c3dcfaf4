package tradetax

import (
	"slices"
	"strings"
	"time"
)

// lot is an open quantity bought at a given price and time.
type lot struct {
	Date     time.Time
	Price    float64
	Quantity float64
}

// lots is a stack of open lots, the most recent purchase on top.
//
// Sells are matched against the top of the stack (LIFO). This is the policy
// of the reports produced here, it is not the FIFO convention most tax
// authorities default to.
type lots []lot

func (l *lots) push(x lot) { *l = append(*l, x) }

func (l *lots) pop() (lot, bool) {
	n := len(*l)
	if n == 0 {
		return lot{}, false
	}
	x := (*l)[n-1]
	*l = (*l)[:n-1]
	return x, true
}

// quantity returns the total open quantity.
func (l lots) quantity() float64 {
	var q float64
	for _, x := range l {
		q += x.Quantity
	}
	return q
}

// positionLedger is the matching state of a single symbol.
type positionLedger struct {
	window *Window
	stack  lots
	events []Event
}

// emit appends e when t is inside the reporting window.
func (p *positionLedger) emit(t time.Time, e ...Event) {
	if p.window.Contains(t) {
		p.events = append(p.events, e...)
	}
}

func (p *positionLedger) buy(t Trade) {
	p.emit(t.Date, BuyEvent{Quantity: t.Quantity, Price: t.AveragePrice, Time: t.Date})
	p.stack.push(lot{Date: t.Date, Price: t.AveragePrice, Quantity: t.Quantity})
}

func (p *positionLedger) sell(t Trade) {
	p.emit(t.Date, SellEvent{Quantity: t.Quantity, Price: t.AveragePrice, Time: t.Date})

	outstanding := t.Quantity
	for {
		current, ok := p.stack.pop()
		if !ok {
			p.emit(t.Date, UnmatchedSell{Quantity: outstanding, Time: t.Date})
			return
		}
		remaining := current.Quantity - outstanding
		matched := min(current.Quantity, outstanding)

		p.emit(t.Date,
			HoldingPeriod{Duration: t.Date.Sub(current.Date)},
			RealizedGain{Amount: (t.AveragePrice - current.Price) * matched, Time: t.Date},
			Fee{Amount: t.Quantity * t.Fees},
		)

		if remaining >= 0 {
			if remaining > 0 {
				current.Quantity = remaining
				p.stack.push(current)
			}
			return
		}
		outstanding = -remaining
	}
}

// matchPositionSymbol computes the ledger of a single symbol. It returns nil
// when nothing but the remaining position would be reported.
func matchPositionSymbol(trades []Trade, window *Window) []Event {
	trades = slices.Clone(trades)
	slices.SortStableFunc(trades, func(a, b Trade) int { return a.Date.Compare(b.Date) })

	p := positionLedger{window: window}
	for _, t := range trades {
		if t.Side == Buy {
			p.buy(t)
		} else {
			p.sell(t)
		}
	}
	if len(p.events) == 0 {
		return nil
	}
	return append(p.events, RemainingPosition{Quantity: p.stack.quantity()})
}

// MatchPositions reconstructs the position ledger of every symbol of trades
// containing filter.
//
// Matching always runs over the full history, the window only selects which
// events are reported. The RemainingPosition event closing each ledger is
// therefore the same whatever the window.
//
// filter is compared case-sensitively: callers normalize it with
// NormalizeSymbol, as ingestion does for symbols.
func MatchPositions(trades Trades, filter string, window *Window) Report {
	r := make(Report)
	for symbol, data := range trades {
		if !strings.Contains(symbol, filter) {
			continue
		}
		if events := matchPositionSymbol(data, window); events != nil {
			r[symbol] = events
		}
	}
	return r
}
