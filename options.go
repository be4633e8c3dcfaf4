package tradetax

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// NetScope selects which cash flows the NetRealized event of an option
// ledger sums.
type NetScope int

const (
	// NetReported sums only the cash flows reported within the window.
	NetReported NetScope = iota
	// NetHistory sums every cash flow of the chain symbol, reported or not,
	// like the position ledger does for its remaining quantity.
	NetHistory
)

func (s NetScope) String() string {
	switch s {
	case NetReported:
		return "reported"
	case NetHistory:
		return "history"
	default:
		return "unknown"
	}
}

// ParseNetScope parses a string into a NetScope.
func ParseNetScope(s string) (NetScope, error) {
	switch s {
	case "reported", "":
		return NetReported, nil
	case "history":
		return NetHistory, nil
	default:
		return 0, fmt.Errorf("unknown net scope: %q", s)
	}
}

// optionLedger is the matching state of a single chain symbol.
type optionLedger struct {
	window *Window
	open   []OptionTrade // open legs, only its depth matters
	events []Event
	total  float64 // every cash flow, reported or not
}

func (o *optionLedger) emit(t time.Time, e Event) {
	amount, _ := CashFlow(e)
	o.total += amount
	if o.window.Contains(t) {
		o.events = append(o.events, e)
	}
}

func (o *optionLedger) fill(t OptionTrade) {
	value := t.Price * contractMultiplier
	if t.Opens() {
		o.open = append(o.open, t)
		if t.Side == Buy {
			o.emit(t.CreatedAt, BuyToOpen{Amount: -value, Time: t.CreatedAt})
		} else {
			o.emit(t.CreatedAt, SellToOpen{Amount: value, Time: t.CreatedAt})
		}
	}
	if t.Closes() {
		// more closes than opens is tolerated.
		if n := len(o.open); n > 0 {
			o.open = o.open[:n-1]
		}
		if t.Side == Buy {
			o.emit(t.CreatedAt, BuyToClose{Amount: -value, Time: t.CreatedAt})
		} else {
			o.emit(t.CreatedAt, SellToClose{Amount: value, Time: t.CreatedAt})
		}
	}
}

// net returns the NetRealized event for that scope.
func (o *optionLedger) net(scope NetScope) NetRealized {
	if scope == NetHistory {
		return NetRealized{Total: o.total}
	}
	var total float64
	for _, e := range o.events {
		amount, _ := CashFlow(e)
		total += amount
	}
	return NetRealized{Total: total}
}

// matchOptionSymbol computes the ledger of a single chain symbol, and the
// number of legs left open. Events are nil when no leg event is reported.
func matchOptionSymbol(fills []OptionTrade, window *Window, scope NetScope) (events []Event, open int) {
	fills = slices.Clone(fills)
	slices.SortStableFunc(fills, func(a, b OptionTrade) int { return a.CreatedAt.Compare(b.CreatedAt) })

	o := optionLedger{window: window}
	for _, f := range fills {
		o.fill(f)
	}
	if len(o.events) == 0 {
		return nil, len(o.open)
	}
	return append(o.events, o.net(scope)), len(o.open)
}

// MatchOptions computes the option cash flow ledger of every chain symbol
// containing filter. NetRealized only sums reported cash flows.
func MatchOptions(trades OptionTrades, filter string, window *Window) Report {
	return MatchOptionsWithScope(trades, filter, window, NetReported)
}

// MatchOptionsWithScope is like MatchOptions with an explicit NetRealized
// scope.
func MatchOptionsWithScope(trades OptionTrades, filter string, window *Window, scope NetScope) Report {
	r := make(Report)
	for symbol, fills := range trades {
		if !strings.Contains(symbol, filter) {
			continue
		}
		if events, _ := matchOptionSymbol(fills, window, scope); events != nil {
			r[symbol] = events
		}
	}
	return r
}
