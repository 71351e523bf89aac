package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/nhle/venuebook/internal/app"
	"github.com/nhle/venuebook/internal/sweep"
	"github.com/nhle/venuebook/internal/timeslot"
)

func runAgenda(args []string) error {
	var common commonFlags
	var resourceID, user, logOutput string

	fs := pflag.NewFlagSet("agenda", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVar(&resourceID, "resource", "", "resource to show (required)")
	fs.StringVar(&user, "user", "", "user acting in the agenda (required)")
	fs.StringVar(&logOutput, "log-output", "", "write log records to this file instead of discarding them")
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}
	if err := requireFlag("resource", resourceID); err != nil {
		return err
	}
	if err := requireFlag("user", user); err != nil {
		return err
	}

	// Log lines would tear the alternate screen.
	var sink io.Writer = io.Discard
	if logOutput != "" {
		f, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log output: %w", err)
		}
		defer f.Close()
		sink = f
	}

	e, err := openEnvLogging(common, sink)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.dir.Get(context.Background(), resourceID); err != nil {
		return err
	}

	interval := time.Duration(e.cfg.Sweep.IntervalSec) * time.Second
	sweeper := sweep.New(e.bookings, timeslot.SystemClock{}, interval, e.logger)

	m := app.New(app.Options{
		ResourceID: resourceID,
		UserID:     user,
		Bookings:   e.bookings,
		Inbox:      e.inbox,
		Sweeper:    sweeper,
	})
	defer sweeper.Stop()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running agenda: %w", err)
	}
	return nil
}
