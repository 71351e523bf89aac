package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/nhle/venuebook/internal/booking"
	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/store"
	"github.com/nhle/venuebook/internal/timeslot"
)

func runBook(args []string) error {
	var common commonFlags
	var req booking.BookingRequest

	fs := pflag.NewFlagSet("book", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVar(&req.ResourceID, "resource", "", "resource to book (required)")
	fs.StringVar(&req.RequesterID, "user", "", "requesting user ID (required)")
	fs.StringVar(&req.Date, "date", "", "day of the booking, YYYY-MM-DD")
	fs.StringVar(&req.StartTime, "start", "", "start time, HH:MM UTC")
	fs.Float64Var(&req.DurationHours, "hours", 1, "duration in hours, fractions allowed")
	fs.Float64Var(&req.Cost, "cost", 0, "price, used only with booking.cost_policy=client")
	quote := fs.Bool("quote", false, "print the price and availability without booking")
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}
	if err := requireFlag("resource", req.ResourceID); err != nil {
		return err
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	if *quote {
		iv, err := timeslot.Resolve(req.Date, req.StartTime, req.DurationHours)
		if err != nil {
			return err
		}
		price, err := e.bookings.Quote(ctx, req.ResourceID, iv)
		if err != nil {
			return err
		}
		availability := "available"
		if err := e.bookings.Check(ctx, req.ResourceID, iv); err != nil {
			ce, ok := model.AsConflict(err)
			if !ok {
				return err
			}
			availability = "taken by " + ce.ReservationID
		}
		fmt.Fprintf(stdout, "%s %s %.2f %s\n", req.ResourceID, iv, price, availability)
		return nil
	}

	if err := requireFlag("user", req.RequesterID); err != nil {
		return err
	}
	r, err := e.bookings.Book(ctx, req)
	if err != nil {
		return err
	}
	writeReservation(stdout, r)
	return nil
}

func runFree(args []string) error {
	var common commonFlags
	var resourceID, date string
	var minHours float64

	fs := pflag.NewFlagSet("free", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVar(&resourceID, "resource", "", "resource to inspect (required)")
	fs.StringVar(&date, "date", "", "day to inspect, YYYY-MM-DD (default today, UTC)")
	fs.Float64Var(&minHours, "min-hours", 0, "hide gaps shorter than this many hours")
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}
	if err := requireFlag("resource", resourceID); err != nil {
		return err
	}
	if minHours < 0 {
		return fmt.Errorf("--min-hours must not be negative")
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	if date == "" {
		date = e.bookings.Now().UTC().Format("2006-01-02")
	}
	minLength := time.Duration(minHours * float64(time.Hour))
	slots, err := e.bookings.FreeSlotsOn(context.Background(), resourceID, date, minLength)
	if err != nil {
		return err
	}
	writeSlots(stdout, slots)
	return nil
}

func runTransition(action string, args []string) error {
	var common commonFlags
	var actor string

	fs := pflag.NewFlagSet(action, pflag.ContinueOnError)
	common.add(fs)
	fs.StringVar(&actor, "user", "", "user performing the action (required)")
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}
	id, err := requireArg(fs, "ID")
	if err != nil {
		return err
	}
	if err := requireFlag("user", actor); err != nil {
		return err
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	var r model.Reservation
	switch action {
	case "confirm":
		r, err = e.bookings.Confirm(ctx, actor, id)
	case "cancel":
		r, err = e.bookings.Cancel(ctx, actor, id)
	case "complete":
		r, err = e.bookings.Complete(ctx, actor, id)
	}
	if err != nil {
		return err
	}
	writeReservation(stdout, r)
	return nil
}

func runDelete(args []string) error {
	var common commonFlags
	var actor string

	fs := pflag.NewFlagSet("delete", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVar(&actor, "user", "", "user performing the deletion")
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}
	id, err := requireArg(fs, "ID")
	if err != nil {
		return err
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	return e.bookings.Delete(context.Background(), actor, id)
}

func runList(args []string) error {
	var common commonFlags
	var resourceID, requesterID string
	var statuses []string
	var limit int

	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVar(&resourceID, "resource", "", "reservations of this resource")
	fs.StringVar(&requesterID, "user", "", "reservations made by this user, newest first")
	fs.StringSliceVar(&statuses, "status", nil, "only these statuses (pending,confirmed,canceled,completed)")
	fs.IntVar(&limit, "limit", 0, "maximum number of rows")
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}

	filter := store.ReservationFilter{Limit: limit}
	if resourceID != "" {
		filter.ResourceID = &resourceID
	}
	if requesterID != "" {
		filter.RequesterID = &requesterID
		filter.SortDesc = resourceID == ""
	}
	for _, st := range statuses {
		status := model.ReservationStatus(st)
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", st)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	rs, err := e.bookings.List(context.Background(), filter)
	if err != nil {
		return err
	}
	writeReservations(stdout, rs)
	return nil
}

func runShow(args []string) error {
	var common commonFlags

	fs := pflag.NewFlagSet("show", pflag.ContinueOnError)
	common.add(fs)
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}
	id, err := requireArg(fs, "ID")
	if err != nil {
		return err
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	r, err := e.bookings.Get(context.Background(), id)
	if err != nil {
		return err
	}
	writeReservation(stdout, *r)
	return nil
}
