package tradetax

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// Book is a record set loaded once and reported on many times.
//
// Its ID identifies the record set: a Book must not be modified after
// creation, load a new one instead.
type Book struct {
	ID      string
	Trades  Trades
	Options OptionTrades
}

// NewBook returns a Book with a fresh identity. Nil groups are replaced by
// empty ones.
func NewBook(trades Trades, options OptionTrades) *Book {
	if trades == nil {
		trades = make(Trades)
	}
	if options == nil {
		options = make(OptionTrades)
	}
	return &Book{ID: uuid.NewString(), Trades: trades, Options: options}
}

// Query holds the user filters of a report.
type Query struct {
	Symbol string   // case-sensitive substring of the symbols to report
	Window *Window  // nil to report every event
	Scope  NetScope // options only
}

func (q Query) key(kind string, book *Book) string {
	return strings.Join([]string{kind, book.ID, q.Symbol, q.Window.key(), q.Scope.String()}, "|")
}

// SymbolError is the failure to compute the ledger of a single symbol.
type SymbolError struct {
	Symbol string
	Err    error
}

func (e *SymbolError) Error() string { return fmt.Sprintf("symbol %s: %v", e.Symbol, e.Err) }
func (e *SymbolError) Unwrap() error { return e.Err }

// Engine computes reports for interactive use: symbols are matched
// concurrently, one failing symbol does not prevent the others from being
// reported, and whole reports are memoized by their inputs.
//
// Reports returned by the engine may be shared with later calls and must be
// treated as read only.
type Engine struct {
	workers int
	ttl     time.Duration
	memo    *cache.Cache
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWorkers sets the maximum number of symbols matched concurrently.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithCacheTTL sets how long a report stays memoized. Zero disables the memo.
func WithCacheTTL(d time.Duration) EngineOption {
	return func(e *Engine) { e.ttl = d }
}

// NewEngine returns an Engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{workers: runtime.GOMAXPROCS(0), ttl: 10 * time.Minute}
	for _, opt := range opts {
		opt(e)
	}
	if e.ttl > 0 {
		e.memo = cache.New(e.ttl, 2*e.ttl)
	}
	return e
}

// Positions returns the position report of book for that query.
func (e *Engine) Positions(ctx context.Context, book *Book, q Query) (Report, error) {
	return e.report(ctx, "positions", book, q, book.Trades.Symbols(), func(symbol string) []Event {
		return matchPositionSymbol(book.Trades[symbol], q.Window)
	})
}

// Options returns the option report of book for that query.
func (e *Engine) Options(ctx context.Context, book *Book, q Query) (Report, error) {
	return e.report(ctx, "options", book, q, book.Options.Symbols(), func(symbol string) []Event {
		events, _ := matchOptionSymbol(book.Options[symbol], q.Window, q.Scope)
		return events
	})
}

func (e *Engine) report(ctx context.Context, kind string, book *Book, q Query, symbols []string, match func(string) []Event) (Report, error) {
	key := q.key(kind, book)
	if e.memo != nil {
		if r, ok := e.memo.Get(key); ok {
			return maps.Clone(r.(Report)), nil
		}
	}

	var selected []string
	for _, s := range symbols {
		if strings.Contains(s, q.Symbol) {
			selected = append(selected, s)
		}
	}

	// each goroutine owns its index.
	ledgers := make([][]Event, len(selected))
	failures := make([]error, len(selected))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, symbol := range selected {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ledgers[i], failures[i] = safeMatch(symbol, match)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := make(Report)
	var errs error
	for i, symbol := range selected {
		if failures[i] != nil {
			errs = errors.Join(errs, failures[i])
			continue
		}
		if ledgers[i] != nil {
			r[symbol] = ledgers[i]
		}
	}
	// a partial report is not memoized, so that the failure is reported again.
	if errs == nil && e.memo != nil {
		e.memo.Set(key, r, cache.DefaultExpiration)
		r = maps.Clone(r)
	}
	return r, errs
}

// safeMatch isolates a symbol: an invariant violation while matching it is
// returned as a *SymbolError.
func safeMatch(symbol string, match func(string) []Event) (events []Event, err error) {
	defer func() {
		if v := recover(); v != nil {
			events, err = nil, &SymbolError{Symbol: symbol, Err: fmt.Errorf("%v", v)}
		}
	}()
	return match(symbol), nil
}
