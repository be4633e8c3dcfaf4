package tradetax

import (
	"time"
)

// origin is the reference instant of test fixtures, days are counted from it.
var origin = time.Date(2022, time.January, 3, 15, 30, 0, 0, time.UTC)

// at returns the instant 'day' days after origin.
func at(day int) time.Time { return origin.AddDate(0, 0, day) }

func buyAt(symbol string, day int, quantity, price float64) Trade {
	return Trade{Symbol: symbol, Date: at(day), OrderType: "market", Side: Buy, Quantity: quantity, AveragePrice: price}
}

func sellAt(symbol string, day int, quantity, price, fees float64) Trade {
	return Trade{Symbol: symbol, Date: at(day), OrderType: "market", Side: Sell, Quantity: quantity, AveragePrice: price, Fees: fees}
}

func group(trades ...Trade) Trades {
	t := make(Trades)
	t.Add(trades...)
	return t
}

// leg returns an option fill; opening and closing are the strategy tags.
func leg(chain string, day int, side Side, price float64, opening, closing string) OptionTrade {
	return OptionTrade{
		ChainSymbol:       chain,
		ExpirationDate:    at(day + 30),
		StrikePrice:       100,
		OptionType:        "call",
		Side:              side,
		CreatedAt:         at(day),
		OrderQuantity:     1,
		OrderType:         "limit",
		OpeningStrategy:   opening,
		ClosingStrategy:   closing,
		Price:             price,
		ProcessedQuantity: 1,
	}
}

func groupOptions(trades ...OptionTrade) OptionTrades {
	t := make(OptionTrades)
	t.Add(trades...)
	return t
}

// kinds returns the kinds of events, for compact assertions.
func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind()
	}
	return out
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
