package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/tradetax"
	"github.com/etnz/tradetax/server"
	"github.com/google/subcommands"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	port     int
	logLevel string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve reports over HTTP" }
func (*serveCmd) Usage() string {
	return `ttx serve [-port <port>] [-log-level <level>]

  Starts an HTTP server computing reports of uploaded exports. The exports
  given with -trades and -option-trades, if any, are loaded as a first book.

  The server is configured by TTX_* environment variables (TTX_PORT,
  TTX_LOG_LEVEL, TTX_BOOK_TTL, TTX_MAX_UPLOAD_BYTES, TTX_WORKERS,
  TTX_READ_TIMEOUT, TTX_WRITE_TIMEOUT, TTX_IDLE_TIMEOUT,
  TTX_SHUTDOWN_TIMEOUT); flags take precedence.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "Port to listen on, overrides TTX_PORT")
	f.StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error), overrides TTX_LOG_LEVEL")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := server.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.port != 0 {
		cfg.Port = c.port
	}
	if c.logLevel != "" {
		if _, err := server.ParseLevel(c.logLevel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -log-level %v\n", err)
			return subcommands.ExitUsageError
		}
		cfg.LogLevel = c.logLevel
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	s := server.New(cfg, tradetax.NewEngine(tradetax.WithWorkers(cfg.Workers)), logger)

	if len(files(*tradesFiles)) > 0 || len(files(*optionTradesFiles)) > 0 {
		book, err := DecodeBook()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		s.AddBook(book)
		logger.Info("book loaded", slog.String("id", book.ID), slog.Int("symbols", len(book.Trades)+len(book.Options)))
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := s.ListenAndServe(ctx); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
