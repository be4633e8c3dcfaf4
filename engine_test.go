package tradetax

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testBook() *Book {
	return NewBook(
		group(
			buyAt("AAPL", 0, 10, 100), sellAt("AAPL", 30, 4, 110, 0.5),
			buyAt("MSFT", 0, 1, 200), sellAt("MSFT", 400, 1, 150, 0),
		),
		groupOptions(
			leg("SPY", 0, Buy, 1, "long_call", ""),
			leg("SPY", 3, Sell, 2, "", "long_call"),
		),
	)
}

func TestEngine_MatchesDirectCalls(t *testing.T) {
	book := testBook()
	e := NewEngine(WithWorkers(2))
	ctx := context.Background()

	tests := []Query{
		{},
		{Symbol: "AAPL"},
		{Window: YearWindow(2023)},
		{Symbol: "ZZZ"},
	}
	for _, q := range tests {
		got, err := e.Positions(ctx, book, q)
		if err != nil {
			t.Fatalf("Positions(%+v) error = %v", q, err)
		}
		if diff := cmp.Diff(MatchPositions(book.Trades, q.Symbol, q.Window), got); diff != "" {
			t.Errorf("Positions(%+v) mismatch (-want +got):\n%s", q, diff)
		}

		got, err = e.Options(ctx, book, q)
		if err != nil {
			t.Fatalf("Options(%+v) error = %v", q, err)
		}
		if diff := cmp.Diff(MatchOptionsWithScope(book.Options, q.Symbol, q.Window, q.Scope), got); diff != "" {
			t.Errorf("Options(%+v) mismatch (-want +got):\n%s", q, diff)
		}
	}
}

func TestEngine_Memo(t *testing.T) {
	book := testBook()
	e := NewEngine()
	ctx := context.Background()

	first := must(e.Positions(ctx, book, Query{}))
	// callers may modify the returned map without affecting the memo.
	delete(first, "AAPL")

	second := must(e.Positions(ctx, book, Query{}))
	if _, ok := second["AAPL"]; !ok {
		t.Errorf("memoized report was altered by a caller: %v", second.Symbols())
	}
	if e.memo.ItemCount() != 1 {
		t.Errorf("memo has %d items, want 1", e.memo.ItemCount())
	}

	must(e.Options(ctx, book, Query{Scope: NetReported}))
	must(e.Options(ctx, book, Query{Scope: NetHistory}))
	if e.memo.ItemCount() != 3 {
		t.Errorf("memo has %d items, want one per kind and scope", e.memo.ItemCount())
	}
}

func TestEngine_MemoDistinguishesWindowStart(t *testing.T) {
	book := NewBook(group(buyAt("AAPL", 0, 1, 100)), nil)
	e := NewEngine()
	ctx := context.Background()

	// both windows start on the day of the buy.
	before := &Window{Start: at(0).Add(-time.Hour)}
	after := &Window{Start: at(0).Add(time.Hour)}

	if got := must(e.Positions(ctx, book, Query{Window: before})); len(got) != 1 {
		t.Fatalf("Positions(before) = %v, want AAPL", got.Symbols())
	}
	got := must(e.Positions(ctx, book, Query{Window: after}))
	if diff := cmp.Diff(MatchPositions(book.Trades, "", after), got); diff != "" {
		t.Errorf("Positions(after) mismatch (-want +got):\n%s", diff)
	}
	if e.memo.ItemCount() != 2 {
		t.Errorf("memo has %d items, want one per window", e.memo.ItemCount())
	}
}

func TestEngine_NoMemo(t *testing.T) {
	e := NewEngine(WithCacheTTL(0))
	if e.memo != nil {
		t.Fatal("WithCacheTTL(0) must disable the memo")
	}
	if _, err := e.Positions(context.Background(), testBook(), Query{}); err != nil {
		t.Fatalf("Positions() error = %v", err)
	}
}

func TestEngine_IsolatesFailingSymbol(t *testing.T) {
	e := NewEngine(WithCacheTTL(time.Minute))
	book := testBook()

	r, err := e.report(context.Background(), "test", book, Query{}, []string{"BAD", "GOOD"}, func(symbol string) []Event {
		if symbol == "BAD" {
			panic("broken lot stack")
		}
		return []Event{RemainingPosition{Quantity: 1}}
	})

	var serr *SymbolError
	if !errors.As(err, &serr) {
		t.Fatalf("report() error = %v, want a *SymbolError", err)
	}
	if serr.Symbol != "BAD" {
		t.Errorf("SymbolError.Symbol = %q, want BAD", serr.Symbol)
	}
	if diff := cmp.Diff([]string{"GOOD"}, r.Symbols()); diff != "" {
		t.Errorf("report() symbols mismatch (-want +got):\n%s", diff)
	}
	if e.memo.ItemCount() != 0 {
		t.Error("a partial report must not be memoized")
	}
}

func TestEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(WithCacheTTL(0)).Positions(ctx, testBook(), Query{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Positions() error = %v, want context.Canceled", err)
	}
}

func TestNewBook(t *testing.T) {
	a, b := NewBook(nil, nil), NewBook(nil, nil)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("NewBook() IDs = %q, %q, want distinct", a.ID, b.ID)
	}
	if a.Trades == nil || a.Options == nil {
		t.Error("NewBook() must replace nil groups")
	}
}
