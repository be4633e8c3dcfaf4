package server

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/etnz/tradetax"
	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
)

// bookStore keeps uploaded books in memory. Reading a book extends its life.
type bookStore struct {
	ttl   time.Duration
	cache *cache.Cache
}

func newBookStore(ttl time.Duration) *bookStore {
	return &bookStore{ttl: ttl, cache: cache.New(ttl, ttl)}
}

func (s *bookStore) put(b *tradetax.Book) { s.cache.Set(b.ID, b, s.ttl) }

func (s *bookStore) get(id string) (*tradetax.Book, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	b := v.(*tradetax.Book)
	s.cache.Set(id, b, s.ttl)
	return b, true
}

func (s *bookStore) delete(id string) bool {
	if _, ok := s.cache.Get(id); !ok {
		return false
	}
	s.cache.Delete(id)
	return true
}

// bookResponse is the JSON description of a book.
type bookResponse struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind,omitempty"`
	Symbols []string `json:"symbols"`
	Options []string `json:"options,omitempty"`
}

// createBook handles POST /books.
//
// The body is a CSV export, kind selects its layout. Trades may also be
// uploaded as a JSON order dump (Content-Type application/json), the orders
// being selected by the optional path JSONPath query parameter.
func (s *Server) createBook(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "trades"
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var book *tradetax.Book
	switch {
	case kind == "trades" && mediaType == "application/json":
		trades, err := tradetax.ImportTradesJSON(body, r.URL.Query().Get("path"))
		if err != nil {
			importError(w, err)
			return
		}
		book = tradetax.NewBook(trades, nil)
	case kind == "trades":
		trades, err := tradetax.ImportTrades(body)
		if err != nil {
			importError(w, err)
			return
		}
		book = tradetax.NewBook(trades, nil)
	case kind == "options":
		options, err := tradetax.ImportOptionTrades(body)
		if err != nil {
			importError(w, err)
			return
		}
		book = tradetax.NewBook(nil, options)
	default:
		WriteError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("unknown kind %q, must be trades or options", kind))
		return
	}

	s.books.put(book)
	s.logger.Info("book created", slog.String("id", book.ID), slog.String("kind", kind))

	resp := bookResponse{ID: book.ID, Kind: kind, Symbols: book.Trades.Symbols()}
	if kind == "options" {
		resp.Symbols = book.Options.Symbols()
	}
	WriteJSON(w, http.StatusCreated, resp)
}

// importError answers an upload that could not be imported.
func importError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge, "book_too_large", fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
		return
	}
	WriteError(w, http.StatusBadRequest, "invalid_book", err.Error())
}

// getBook handles GET /books/{book_id}.
func (s *Server) getBook(w http.ResponseWriter, r *http.Request) {
	book, ok := s.book(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, bookResponse{
		ID:      book.ID,
		Symbols: book.Trades.Symbols(),
		Options: book.Options.Symbols(),
	})
}

// deleteBook handles DELETE /books/{book_id}.
func (s *Server) deleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "book_id")
	if !s.books.delete(id) {
		WriteError(w, http.StatusNotFound, "not_found", fmt.Sprintf("book %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) book(w http.ResponseWriter, r *http.Request) (*tradetax.Book, bool) {
	id := chi.URLParam(r, "book_id")
	book, ok := s.books.get(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", fmt.Sprintf("book %q not found", id))
	}
	return book, ok
}

// reportResponse is the JSON body of a report.
type reportResponse struct {
	Book    string          `json:"book"`
	Window  string          `json:"window"`
	Symbols tradetax.Report `json:"symbols"`
	Errors  []string        `json:"errors,omitempty"`
}

// positions handles GET /books/{book_id}/positions.
func (s *Server) positions(w http.ResponseWriter, r *http.Request) {
	book, q, ok := s.request(w, r)
	if !ok {
		return
	}
	report, err := s.engine.Positions(r.Context(), book, q)
	failed, ok := s.partial(w, err)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, reportResponse{Book: book.ID, Window: q.Window.String(), Symbols: report, Errors: failed})
}

// options handles GET /books/{book_id}/options.
func (s *Server) options(w http.ResponseWriter, r *http.Request) {
	book, q, ok := s.request(w, r)
	if !ok {
		return
	}
	report, err := s.engine.Options(r.Context(), book, q)
	failed, ok := s.partial(w, err)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, reportResponse{Book: book.ID, Window: q.Window.String(), Symbols: report, Errors: failed})
}

// summaryResponse is the JSON body of a summary.
type summaryResponse struct {
	Book      string        `json:"book"`
	Window    string        `json:"window"`
	Positions []summaryJSON `json:"positions"`
	Options   []summaryJSON `json:"options"`
	Errors    []string      `json:"errors,omitempty"`
}

type summaryJSON struct {
	Symbol      string  `json:"symbol"`
	Buys        int     `json:"buys,omitempty"`
	Sells       int     `json:"sells,omitempty"`
	Unmatched   int     `json:"unmatched,omitempty"`
	Realized    float64 `json:"realized"`
	ShortTerm   float64 `json:"shortTerm"`
	LongTerm    float64 `json:"longTerm"`
	Fees        float64 `json:"fees"`
	Remaining   float64 `json:"remaining"`
	CashFlow    float64 `json:"cashFlow"`
	NetRealized float64 `json:"netRealized"`
	Net         float64 `json:"net"`
	Outcome     string  `json:"outcome"`
}

func summaries(r tradetax.Report) []summaryJSON {
	out := make([]summaryJSON, 0, len(r))
	for _, s := range r.Summaries() {
		out = append(out, summaryJSON{
			Symbol:      s.Symbol,
			Buys:        s.Buys,
			Sells:       s.Sells,
			Unmatched:   s.Unmatched,
			Realized:    s.Realized,
			ShortTerm:   s.ShortTerm,
			LongTerm:    s.LongTerm,
			Fees:        s.Fees,
			Remaining:   s.Remaining,
			CashFlow:    s.CashFlow,
			NetRealized: s.NetRealized,
			Net:         s.Net(),
			Outcome:     s.Outcome().String(),
		})
	}
	return out
}

// summary handles GET /books/{book_id}/summary.
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	book, q, ok := s.request(w, r)
	if !ok {
		return
	}
	positions, err := s.engine.Positions(r.Context(), book, q)
	failed, ok := s.partial(w, err)
	if !ok {
		return
	}
	options, err := s.engine.Options(r.Context(), book, q)
	failedOptions, ok := s.partial(w, err)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, summaryResponse{
		Book:      book.ID,
		Window:    q.Window.String(),
		Positions: summaries(positions),
		Options:   summaries(options),
		Errors:    append(failed, failedOptions...),
	})
}

// request returns the book and query of a report request.
func (s *Server) request(w http.ResponseWriter, r *http.Request) (*tradetax.Book, tradetax.Query, bool) {
	q, err := parseQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return nil, q, false
	}
	book, ok := s.book(w, r)
	return book, q, ok
}

func parseQuery(r *http.Request) (tradetax.Query, error) {
	values := r.URL.Query()
	q := tradetax.Query{Symbol: tradetax.NormalizeSymbol(values.Get("symbol"))}

	year, from := values.Get("year"), values.Get("from")
	if year != "" && from != "" {
		return q, errors.New("year and from cannot be used together")
	}
	var err error
	if q.Window, err = tradetax.ParseWindow(year + from); err != nil {
		return q, err
	}
	if q.Scope, err = tradetax.ParseNetScope(values.Get("scope")); err != nil {
		return q, err
	}
	return q, nil
}

// partial separates per symbol failures, reported along with the rest of the
// report, from failures of the whole request, written as an error response.
func (s *Server) partial(w http.ResponseWriter, err error) ([]string, bool) {
	if err == nil {
		return nil, true
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	var failed []string
	for _, e := range errs {
		var serr *tradetax.SymbolError
		if !errors.As(e, &serr) {
			s.logger.Error("report failed", slog.String("error", err.Error()))
			WriteError(w, http.StatusServiceUnavailable, "report_failed", err.Error())
			return nil, false
		}
		s.logger.Warn("symbol failed", slog.String("symbol", serr.Symbol), slog.String("error", serr.Err.Error()))
		failed = append(failed, serr.Error())
	}
	return failed, true
}
