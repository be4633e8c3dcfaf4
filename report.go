package tradetax

import (
	"maps"
	"slices"
)

// Report maps a symbol to its ordered ledger of events.
type Report map[string][]Event

// Symbols returns the sorted symbols of the report.
func (r Report) Symbols() []string { return slices.Sorted(maps.Keys(r)) }

// Outcome classifies the realized result of a symbol.
type Outcome int

const (
	Flat Outcome = iota
	Gain
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Gain:
		return "gain"
	case Loss:
		return "loss"
	default:
		return "flat"
	}
}

// Summary aggregates the ledger of one symbol.
type Summary struct {
	Symbol    string
	Buys      int
	Sells     int
	Unmatched int // number of UnmatchedSell events

	Realized  float64 // sum of RealizedGain
	ShortTerm float64 // part of Realized held less than LongTermThreshold
	LongTerm  float64 // part of Realized held at least LongTermThreshold
	Fees      float64
	Remaining float64 // RemainingPosition quantity

	CashFlow    float64 // sum of option leg cash flows
	NetRealized float64 // NetRealized total
}

// Net returns the realized gains of positions and options, minus fees.
func (s Summary) Net() float64 { return s.Realized + s.NetRealized - s.Fees }

// Outcome returns whether the symbol ended with a gain, a loss or flat.
func (s Summary) Outcome() Outcome {
	switch v := s.Realized + s.NetRealized; {
	case v > 0:
		return Gain
	case v < 0:
		return Loss
	default:
		return Flat
	}
}

// Summarize aggregates the events of a single symbol.
//
// A RealizedGain is classified short or long term by the HoldingPeriod
// preceding it in the ledger.
func Summarize(symbol string, events []Event) Summary {
	s := Summary{Symbol: symbol}
	var held HoldingPeriod
	for _, e := range events {
		switch v := e.(type) {
		case BuyEvent:
			s.Buys++
		case SellEvent:
			s.Sells++
		case UnmatchedSell:
			s.Unmatched++
		case HoldingPeriod:
			held = v
		case RealizedGain:
			s.Realized += v.Amount
			if held.LongTerm() {
				s.LongTerm += v.Amount
			} else {
				s.ShortTerm += v.Amount
			}
		case Fee:
			s.Fees += v.Amount
		case RemainingPosition:
			s.Remaining = v.Quantity
		case BuyToOpen, SellToOpen, BuyToClose, SellToClose:
			amount, _ := CashFlow(v)
			s.CashFlow += amount
		case NetRealized:
			s.NetRealized = v.Total
		}
	}
	return s
}

// Summaries returns the summary of every symbol, sorted by symbol.
func (r Report) Summaries() []Summary {
	out := make([]Summary, 0, len(r))
	for _, symbol := range r.Symbols() {
		out = append(out, Summarize(symbol, r[symbol]))
	}
	return out
}

// Total adds all the summaries of the report into one, named "Total". The
// remaining quantities of different symbols are not added.
func (r Report) Total() Summary {
	t := Summary{Symbol: "Total"}
	for _, s := range r.Summaries() {
		t.Buys += s.Buys
		t.Sells += s.Sells
		t.Unmatched += s.Unmatched
		t.Realized += s.Realized
		t.ShortTerm += s.ShortTerm
		t.LongTerm += s.LongTerm
		t.Fees += s.Fees
		t.CashFlow += s.CashFlow
		t.NetRealized += s.NetRealized
	}
	return t
}

// RealizedGains returns the sum of all RealizedGain events of the report.
func (r Report) RealizedGains() float64 { return r.Total().Realized }

// Fees returns the sum of all Fee events of the report.
func (r Report) Fees() float64 { return r.Total().Fees }

// NetRealized returns the sum of all NetRealized events of the report.
func (r Report) NetRealized() float64 { return r.Total().NetRealized }
