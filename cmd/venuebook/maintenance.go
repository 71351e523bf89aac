package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/nhle/venuebook/internal/seed"
	"github.com/nhle/venuebook/internal/sweep"
	"github.com/nhle/venuebook/internal/timeslot"
)

func runSweep(args []string) error {
	var common commonFlags
	var watch bool

	fs := pflag.NewFlagSet("sweep", pflag.ContinueOnError)
	common.add(fs)
	fs.BoolVar(&watch, "watch", false, "keep sweeping every sweep.interval_sec until interrupted")
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	interval := time.Duration(e.cfg.Sweep.IntervalSec) * time.Second
	sweeper := sweep.New(e.bookings, timeslot.SystemClock{}, interval, e.logger)

	if !watch {
		result := sweeper.RunOnce(context.Background())
		writeSweep(stdout, result)
		return result.Error
	}

	ctx, cancel := signalContext()
	defer cancel()

	sweeper.Start()
	defer sweeper.Stop()

	e.logger.Info("sweeping", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case result, ok := <-sweeper.Results():
			if !ok {
				return nil
			}
			writeSweep(stdout, result)
		}
	}
}

func runSeed(args []string) error {
	var common commonFlags
	var reset bool

	fs := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	common.add(fs)
	fs.BoolVar(&reset, "reset", false, "delete all existing data first")
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}
	path, err := requireArg(fs, "FILE")
	if err != nil {
		return err
	}

	f, err := seed.Load(path)
	if err != nil {
		return err
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	if reset {
		if err := e.store.Reset(ctx); err != nil {
			return err
		}
	}

	sum, err := seed.Apply(ctx, f, e.dir, e.bookings, e.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "resources: %d  reservations: %d  skipped: %d\n", sum.Resources, sum.Created, sum.Skipped)
	return nil
}

func runStats(args []string) error {
	var common commonFlags

	fs := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	common.add(fs)
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := e.store.Stats(context.Background())
	if err != nil {
		return err
	}
	writeStats(stdout, st)
	return nil
}
