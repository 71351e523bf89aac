package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nhle/venuebook/internal/booking"
	"github.com/nhle/venuebook/internal/directory"
	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/notify"
	"github.com/nhle/venuebook/internal/store"
)

// commonFlags are accepted by every subcommand that touches the database.
type commonFlags struct {
	configPath string
	dbPath     string
}

func (c *commonFlags) add(fs *pflag.FlagSet) {
	fs.StringVar(&c.configPath, "config", model.DefaultConfigPath(), "configuration file")
	fs.StringVar(&c.dbPath, "db", "", "database file (overrides database.path)")
}

// parseFlags parses args into fs and reports whether the caller should stop
// because help was requested.
func parseFlags(fs *pflag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// env is the wired set of services one subcommand runs against.
type env struct {
	cfg        *model.AppConfig
	logger     *slog.Logger
	store      *store.SQLiteStore
	dir        *directory.Directory
	dispatcher *notify.Dispatcher
	bookings   *booking.Service
	inbox      *notify.Inbox
}

// openEnv loads configuration, opens the store and starts the notification
// dispatcher, logging to stderr. Close must be called to drain pending
// notifications.
func openEnv(flags commonFlags) (*env, error) {
	return openEnvLogging(flags, os.Stderr)
}

// openEnvLogging is openEnv with log records written to w.
func openEnvLogging(flags commonFlags, w io.Writer) (*env, error) {
	cfg, err := effectiveConfig(flags)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Log.Level, w)
	slog.SetDefault(logger)

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.Database.Path, err)
	}

	dir := directory.New(s)
	dispatcher := notify.NewDispatcher(s, notify.OptionsFromConfig(cfg.Notify, logger))
	bookings := booking.NewService(s, dir, dispatcher, booking.Options{
		Policy: cfg.Booking,
		Logger: logger,
	})

	return &env{
		cfg:        cfg,
		logger:     logger,
		store:      s,
		dir:        dir,
		dispatcher: dispatcher,
		bookings:   bookings,
		inbox:      notify.NewInbox(s),
	}, nil
}

// Close waits for queued notifications, then closes the database.
func (e *env) Close() {
	e.dispatcher.Close()
	if n := e.dispatcher.Dropped(); n > 0 {
		e.logger.Warn("notification batches dropped", "count", n)
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("closing database", "error", err)
	}
}

// newLogger builds a text logger writing to w. VENUEBOOK_DEBUG forces debug.
func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if os.Getenv("VENUEBOOK_DEBUG") != "" {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// requireArg returns the single positional argument or a usage error.
func requireArg(fs *pflag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("usage: venuebook %s %s", fs.Name(), what)
	}
	return fs.Arg(0), nil
}

func requireFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}
