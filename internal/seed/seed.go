// Package seed imports resources and bookings from a YAML file.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nhle/venuebook/internal/booking"
	"github.com/nhle/venuebook/internal/model"
)

// File is the document layout of a seed file.
type File struct {
	Resources []model.Resource `yaml:"resources"`
	Bookings  []Booking        `yaml:"bookings"`
}

// Booking is one reservation request in a seed file. Status, when set,
// is reached through the normal transitions after creation.
type Booking struct {
	Resource  string                  `yaml:"resource"`
	Requester string                  `yaml:"requester"`
	Date      string                  `yaml:"date"`
	Start     string                  `yaml:"start"`
	Hours     float64                 `yaml:"hours"`
	Cost      float64                 `yaml:"cost"`
	Status    model.ReservationStatus `yaml:"status"`
}

// Summary counts what Apply did.
type Summary struct {
	Resources int
	Created   int
	Skipped   int
}

// Registrar stores resources.
type Registrar interface {
	Register(ctx context.Context, res model.Resource) (model.Resource, error)
}

// Booker creates reservations and moves them along.
type Booker interface {
	Book(ctx context.Context, req booking.BookingRequest) (model.Reservation, error)
	Confirm(ctx context.Context, actorID, id string) (model.Reservation, error)
	Cancel(ctx context.Context, actorID, id string) (model.Reservation, error)
	Complete(ctx context.Context, actorID, id string) (model.Reservation, error)
}

// Load reads and parses a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document, rejecting unknown fields.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	for i, b := range f.Bookings {
		if b.Status != "" && !b.Status.Valid() {
			return nil, fmt.Errorf("booking %d: unknown status %q", i+1, b.Status)
		}
	}
	return &f, nil
}

// Apply registers every resource, then books every booking in file order.
// Bookings rejected for a conflict or bad input are skipped and logged;
// any other error stops the import.
func Apply(ctx context.Context, f *File, reg Registrar, b Booker, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var sum Summary

	owners := make(map[string]string, len(f.Resources))
	for _, res := range f.Resources {
		saved, err := reg.Register(ctx, res)
		if err != nil {
			return sum, fmt.Errorf("resource %s: %w", res.ID, err)
		}
		owners[saved.ID] = saved.OwnerID
		sum.Resources++
	}

	for i, bk := range f.Bookings {
		r, err := b.Book(ctx, booking.BookingRequest{
			ResourceID:    bk.Resource,
			RequesterID:   bk.Requester,
			Date:          bk.Date,
			StartTime:     bk.Start,
			DurationHours: bk.Hours,
			Cost:          bk.Cost,
		})
		if err != nil {
			if skippable(err) {
				logger.Warn("skipping seed booking", "index", i+1, "resource", bk.Resource, "error", err)
				sum.Skipped++
				continue
			}
			return sum, fmt.Errorf("booking %d: %w", i+1, err)
		}

		if err := advance(ctx, b, r.ID, owners[bk.Resource], bk.Requester, bk.Status); err != nil {
			return sum, fmt.Errorf("booking %d: %w", i+1, err)
		}
		sum.Created++
	}

	return sum, nil
}

// advance walks a pending reservation to the requested status.
func advance(ctx context.Context, b Booker, id, owner, requester string, status model.ReservationStatus) error {
	var err error
	switch status {
	case "", model.StatusPending:
	case model.StatusConfirmed:
		_, err = b.Confirm(ctx, owner, id)
	case model.StatusCanceled:
		_, err = b.Cancel(ctx, requester, id)
	case model.StatusCompleted:
		if _, err = b.Confirm(ctx, owner, id); err == nil {
			_, err = b.Complete(ctx, owner, id)
		}
	}
	return err
}

func skippable(err error) bool {
	if _, ok := model.AsConflict(err); ok {
		return true
	}
	if _, ok := model.AsValidation(err); ok {
		return true
	}
	return model.IsNotFound(err)
}
