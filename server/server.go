// Package server exposes the tradetax engine over HTTP.
//
// Clients upload a record set once, as a book, then request reports on it
// with different filters:
//
//	POST /books?kind=trades|options          upload a CSV (or JSON trades) export
//	GET  /books/{id}                         list the symbols of a book
//	DELETE /books/{id}
//	GET  /books/{id}/positions?symbol=&year=&from=
//	GET  /books/{id}/options?symbol=&year=&from=&scope=
//	GET  /books/{id}/summary?symbol=&year=&from=&scope=
//
// Books live in memory and expire after the configured TTL.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/etnz/tradetax"
	"github.com/go-chi/chi/v5"
)

// Server serves reports of uploaded books.
type Server struct {
	cfg    *Config
	engine *tradetax.Engine
	books  *bookStore
	logger *slog.Logger
}

// New returns a Server computing reports with engine.
func New(cfg *Config, engine *tradetax.Engine, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		engine: engine,
		books:  newBookStore(cfg.BookTTL),
		logger: logger,
	}
}

// AddBook makes a book available to clients, under its ID.
func (s *Server) AddBook(b *tradetax.Book) { s.books.put(b) }

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogging(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/books", s.createBook)
	r.Route("/books/{book_id}", func(r chi.Router) {
		r.Get("/", s.getBook)
		r.Delete("/", s.deleteBook)
		r.Get("/positions", s.positions)
		r.Get("/options", s.options)
		r.Get("/summary", s.summary)
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter captures the status code of a response.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}
