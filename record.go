package tradetax

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Side is the direction of a fill.
type Side string

// Sides of a fill.
const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// ParseSide parses a fill side, case insensitive.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown side: %q", s)
	}
}

// NormalizeSymbol is the case normalization shared by ingestion and every
// caller building a symbol filter. The matchers themselves compare symbols
// with a case-sensitive substring test.
func NormalizeSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Trade is an equity or crypto fill.
type Trade struct {
	Symbol       string
	Date         time.Time
	OrderType    string
	Side         Side
	Quantity     float64
	AveragePrice float64
	Fees         float64 // per unit fee, multiplied by the matched quantity on sells.
}

// Trades groups fills by symbol. Slices are in input order, not sorted.
type Trades map[string][]Trade

// Add appends trades to their symbol group.
func (t Trades) Add(trades ...Trade) {
	for _, tr := range trades {
		t[tr.Symbol] = append(t[tr.Symbol], tr)
	}
}

// Merge appends all of other's trades into t, keeping other's input order.
func (t Trades) Merge(other Trades) {
	for _, symbol := range slices.Sorted(maps.Keys(other)) {
		t.Add(other[symbol]...)
	}
}

// Symbols returns the sorted list of symbols.
func (t Trades) Symbols() []string { return slices.Sorted(maps.Keys(t)) }

// OptionTrade is a single option leg fill.
type OptionTrade struct {
	ChainSymbol       string
	ExpirationDate    time.Time
	StrikePrice       float64
	OptionType        string // call or put
	Side              Side
	CreatedAt         time.Time
	Direction         string // debit or credit
	OrderQuantity     float64
	OrderType         string
	OpeningStrategy   string // empty when the fill does not open a leg
	ClosingStrategy   string // empty when the fill does not close a leg
	Price             float64
	ProcessedQuantity float64
}

// Opens reports whether the fill carries an opening strategy tag.
func (o OptionTrade) Opens() bool { return o.OpeningStrategy != "" }

// Closes reports whether the fill carries a closing strategy tag.
func (o OptionTrade) Closes() bool { return o.ClosingStrategy != "" }

// OptionTrades groups option fills by chain symbol.
type OptionTrades map[string][]OptionTrade

// Add appends option fills to their chain symbol group.
func (t OptionTrades) Add(trades ...OptionTrade) {
	for _, tr := range trades {
		t[tr.ChainSymbol] = append(t[tr.ChainSymbol], tr)
	}
}

// Merge appends all of other's fills into t, keeping other's input order.
func (t OptionTrades) Merge(other OptionTrades) {
	for _, symbol := range slices.Sorted(maps.Keys(other)) {
		t.Add(other[symbol]...)
	}
}

// Symbols returns the sorted list of chain symbols.
func (t OptionTrades) Symbols() []string { return slices.Sorted(maps.Keys(t)) }

// contractMultiplier is the number of underlying units one contract controls.
const contractMultiplier = 100
