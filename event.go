package tradetax

import (
	"encoding/json"
	"time"
)

// EventKind identifies the type of an Event.
type EventKind string

// Event kinds of the position ledger.
const (
	KindBuy               EventKind = "buy"
	KindSell              EventKind = "sell"
	KindRealizedGain      EventKind = "realized-gain"
	KindHoldingPeriod     EventKind = "holding-period"
	KindFee               EventKind = "fee"
	KindRemainingPosition EventKind = "remaining-position"
	KindUnmatchedSell     EventKind = "unmatched-sell"
)

// Event kinds of the option ledger.
const (
	KindBuyToOpen   EventKind = "buy-to-open"
	KindSellToOpen  EventKind = "sell-to-open"
	KindBuyToClose  EventKind = "buy-to-close"
	KindSellToClose EventKind = "sell-to-close"
	KindNetRealized EventKind = "net-realized"
)

// Event is one entry of a symbol's ledger.
//
// The set of events is closed: the concrete types are the ones declared in
// this file, and consumers are expected to type switch over them.
type Event interface {
	Kind() EventKind
	json.Marshaler
	event()
}

// LongTermThreshold is the holding duration from which a gain is long term.
const LongTermThreshold = 365 * 24 * time.Hour

// BuyEvent reports a buy fill.
type BuyEvent struct {
	Quantity float64
	Price    float64
	Time     time.Time
}

// SellEvent reports a sell fill.
type SellEvent struct {
	Quantity float64
	Price    float64
	Time     time.Time
}

// RealizedGain is the signed profit of one matched lot, negative for a loss.
type RealizedGain struct {
	Amount float64
	Time   time.Time // when it was realized, the sell time
}

// HoldingPeriod is the time between a lot's acquisition and the sell that
// matched it.
type HoldingPeriod struct {
	Duration time.Duration
}

// Days returns the number of whole days of the holding period.
func (h HoldingPeriod) Days() int { return int(h.Duration / (24 * time.Hour)) }

// LongTerm reports whether the holding period qualifies as long term.
func (h HoldingPeriod) LongTerm() bool { return h.Duration >= LongTermThreshold }

// Fee is a positive fee magnitude, to be subtracted by the caller.
type Fee struct {
	Amount float64
}

// RemainingPosition is the quantity still held after all fills.
type RemainingPosition struct {
	Quantity float64
}

// UnmatchedSell reports a sell, or the end of one, that found no open lot.
type UnmatchedSell struct {
	Quantity float64 // the sell quantity left unmatched
	Time     time.Time
}

// BuyToOpen is the (negative) cash flow of a fill opening a long leg.
type BuyToOpen struct {
	Amount float64
	Time   time.Time
}

// SellToOpen is the (positive) cash flow of a fill opening a short leg.
type SellToOpen struct {
	Amount float64
	Time   time.Time
}

// BuyToClose is the (negative) cash flow of a fill closing a short leg.
type BuyToClose struct {
	Amount float64
	Time   time.Time
}

// SellToClose is the (positive) cash flow of a fill closing a long leg.
type SellToClose struct {
	Amount float64
	Time   time.Time
}

// NetRealized is the sum of a chain symbol's option cash flows.
type NetRealized struct {
	Total float64
}

func (BuyEvent) Kind() EventKind          { return KindBuy }
func (SellEvent) Kind() EventKind         { return KindSell }
func (RealizedGain) Kind() EventKind      { return KindRealizedGain }
func (HoldingPeriod) Kind() EventKind     { return KindHoldingPeriod }
func (Fee) Kind() EventKind               { return KindFee }
func (RemainingPosition) Kind() EventKind { return KindRemainingPosition }
func (UnmatchedSell) Kind() EventKind     { return KindUnmatchedSell }
func (BuyToOpen) Kind() EventKind         { return KindBuyToOpen }
func (SellToOpen) Kind() EventKind        { return KindSellToOpen }
func (BuyToClose) Kind() EventKind        { return KindBuyToClose }
func (SellToClose) Kind() EventKind       { return KindSellToClose }
func (NetRealized) Kind() EventKind       { return KindNetRealized }

func (BuyEvent) event()          {}
func (SellEvent) event()         {}
func (RealizedGain) event()      {}
func (HoldingPeriod) event()     {}
func (Fee) event()               {}
func (RemainingPosition) event() {}
func (UnmatchedSell) event()     {}
func (BuyToOpen) event()         {}
func (SellToOpen) event()        {}
func (BuyToClose) event()        {}
func (SellToClose) event()       {}
func (NetRealized) event()       {}

// CashFlow returns the signed cash flow of an option leg event.
func CashFlow(e Event) (amount float64, ok bool) {
	switch v := e.(type) {
	case BuyToOpen:
		return v.Amount, true
	case SellToOpen:
		return v.Amount, true
	case BuyToClose:
		return v.Amount, true
	case SellToClose:
		return v.Amount, true
	default:
		return 0, false
	}
}

// Every event is encoded as a JSON object whose first property is its kind.

func kindWriter(e Event) *jsonObjectWriter {
	var w jsonObjectWriter
	w.Append("kind", e.Kind())
	return &w
}

func (e BuyEvent) MarshalJSON() ([]byte, error) {
	w := kindWriter(e)
	w.Append("quantity", e.Quantity)
	w.Append("price", e.Price)
	w.Append("time", e.Time)
	return w.MarshalJSON()
}

func (e SellEvent) MarshalJSON() ([]byte, error) {
	w := kindWriter(e)
	w.Append("quantity", e.Quantity)
	w.Append("price", e.Price)
	w.Append("time", e.Time)
	return w.MarshalJSON()
}

func (e RealizedGain) MarshalJSON() ([]byte, error) {
	w := kindWriter(e)
	w.Append("amount", e.Amount)
	w.Append("time", e.Time)
	return w.MarshalJSON()
}

func (e HoldingPeriod) MarshalJSON() ([]byte, error) {
	w := kindWriter(e)
	w.Append("days", e.Days())
	w.Append("seconds", int64(e.Duration/time.Second))
	w.Append("longTerm", e.LongTerm())
	return w.MarshalJSON()
}

func (e Fee) MarshalJSON() ([]byte, error) {
	w := kindWriter(e)
	w.Append("amount", e.Amount)
	return w.MarshalJSON()
}

func (e RemainingPosition) MarshalJSON() ([]byte, error) {
	w := kindWriter(e)
	w.Append("quantity", e.Quantity)
	return w.MarshalJSON()
}

func (e UnmatchedSell) MarshalJSON() ([]byte, error) {
	w := kindWriter(e)
	w.Append("quantity", e.Quantity)
	w.Append("time", e.Time)
	return w.MarshalJSON()
}

func marshalCashFlow(e Event, amount float64, t time.Time) ([]byte, error) {
	w := kindWriter(e)
	w.Append("amount", amount)
	w.Append("time", t)
	return w.MarshalJSON()
}

func (e BuyToOpen) MarshalJSON() ([]byte, error)   { return marshalCashFlow(e, e.Amount, e.Time) }
func (e SellToOpen) MarshalJSON() ([]byte, error)  { return marshalCashFlow(e, e.Amount, e.Time) }
func (e BuyToClose) MarshalJSON() ([]byte, error)  { return marshalCashFlow(e, e.Amount, e.Time) }
func (e SellToClose) MarshalJSON() ([]byte, error) { return marshalCashFlow(e, e.Amount, e.Time) }

func (e NetRealized) MarshalJSON() ([]byte, error) {
	w := kindWriter(e)
	w.Append("total", e.Total)
	return w.MarshalJSON()
}
