// Package booking implements the reservation state machine.
//
// A reservation starts pending, may be confirmed, and ends canceled or
// completed. Every state change is persisted before its notifications are
// handed to the dispatcher, and a notification failure never fails the
// operation that caused it.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/notify"
	"github.com/nhle/venuebook/internal/store"
	"github.com/nhle/venuebook/internal/timeslot"
)

// Directory resolves resource metadata.
type Directory interface {
	Get(ctx context.Context, resourceID string) (*model.Resource, error)
	GetOwner(ctx context.Context, resourceID string) (string, error)
	GetRate(ctx context.Context, resourceID string) (float64, error)
}

// Notifier accepts notification batches for background delivery.
type Notifier interface {
	Submit(ctx context.Context, events ...notify.Event) bool
}

// Options configures a Service.
type Options struct {
	Policy model.BookingConfig
	Clock  timeslot.Clock
	Logger *slog.Logger
}

// Service runs reservation operations against a store.
type Service struct {
	store    store.Store
	dir      Directory
	notifier Notifier
	policy   model.BookingConfig
	clock    timeslot.Clock
	logger   *slog.Logger
}

// NewService creates a Service. Empty policies fall back to pending_only
// confirmation and server-side pricing.
func NewService(s store.Store, dir Directory, n Notifier, opts Options) *Service {
	if opts.Policy.ConfirmPolicy == "" {
		opts.Policy.ConfirmPolicy = model.ConfirmPendingOnly
	}
	if opts.Policy.CostPolicy == "" {
		opts.Policy.CostPolicy = model.CostServer
	}
	if opts.Clock == nil {
		opts.Clock = timeslot.SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:    s,
		dir:      dir,
		notifier: n,
		policy:   opts.Policy,
		clock:    opts.Clock,
		logger:   logger.With("component", "booking"),
	}
}

// NewReservation is a request to hold a resource for an interval.
type NewReservation struct {
	ResourceID  string
	RequesterID string
	Interval    model.Interval

	// Cost is used only under the client cost policy.
	Cost float64
}

// BookingRequest is the calendar form of NewReservation: a UTC date, an
// "HH:MM" start time and a duration in hours.
type BookingRequest struct {
	ResourceID    string
	RequesterID   string
	Date          string
	StartTime     string
	DurationHours float64
	Cost          float64
}

// Book resolves the calendar fields of req and creates the reservation.
func (s *Service) Book(ctx context.Context, req BookingRequest) (model.Reservation, error) {
	iv, err := timeslot.Resolve(req.Date, req.StartTime, req.DurationHours)
	if err != nil {
		return model.Reservation{}, err
	}
	return s.Create(ctx, NewReservation{
		ResourceID:  req.ResourceID,
		RequesterID: req.RequesterID,
		Interval:    iv,
		Cost:        req.Cost,
	})
}

// Create validates req, checks availability and stores a pending
// reservation in one step. It fails with a ValidationError for malformed
// input and a ConflictError when the interval overlaps a live reservation.
func (s *Service) Create(ctx context.Context, req NewReservation) (model.Reservation, error) {
	if strings.TrimSpace(req.RequesterID) == "" {
		return model.Reservation{}, model.Invalid("requester", "must not be empty")
	}
	if strings.TrimSpace(req.ResourceID) == "" {
		return model.Reservation{}, model.Invalid("resource", "must not be empty")
	}
	if err := timeslot.Validate(req.Interval); err != nil {
		return model.Reservation{}, err
	}
	iv := timeslot.Normalize(req.Interval)
	if !iv.Valid() {
		return model.Reservation{}, model.Invalid("interval", "shorter than one second")
	}

	res, err := s.dir.Get(ctx, req.ResourceID)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("looking up resource %s: %w", req.ResourceID, err)
	}

	if s.policy.EnforceOperatingHours {
		if err := timeslot.WithinOperatingHours(iv, res.OpeningTime, res.ClosingTime); err != nil {
			return model.Reservation{}, err
		}
	}

	cost, err := s.cost(res, iv, req.Cost)
	if err != nil {
		return model.Reservation{}, err
	}

	r, err := s.store.CreateReservationIfAvailable(ctx, model.Reservation{
		ResourceID:  res.ID,
		RequesterID: req.RequesterID,
		Interval:    iv,
		Cost:        cost,
		Status:      model.StatusPending,
	})
	if err != nil {
		if ce, ok := model.AsConflict(err); ok {
			s.logger.Info("reservation rejected",
				"resource", res.ID, "requester", req.RequesterID,
				"interval", iv.String(), "conflict", ce.ReservationID)
		}
		return model.Reservation{}, err
	}

	s.logger.Info("reservation created",
		"id", r.ID, "resource", r.ResourceID, "requester", r.RequesterID,
		"interval", r.Interval.String(), "cost", r.Cost)

	s.announce(ctx, r, res.OwnerID, model.NotificationBookingCreated)
	return r, nil
}

func (s *Service) cost(res *model.Resource, iv model.Interval, requested float64) (float64, error) {
	if s.policy.CostPolicy == model.CostClient {
		if requested < 0 {
			return 0, model.Invalid("cost", "must not be negative")
		}
		return requested, nil
	}
	return timeslot.Cost(res.HourlyRate, iv), nil
}

// Quote returns what the resource charges for iv.
func (s *Service) Quote(ctx context.Context, resourceID string, iv model.Interval) (float64, error) {
	if err := timeslot.Validate(iv); err != nil {
		return 0, err
	}
	rate, err := s.dir.GetRate(ctx, resourceID)
	if err != nil {
		return 0, fmt.Errorf("looking up rate of %s: %w", resourceID, err)
	}
	return timeslot.Cost(rate, iv), nil
}

// Confirm moves a reservation to confirmed. Which statuses it may come from
// depends on the confirm policy; reviving a canceled or completed
// reservation re-checks availability.
func (s *Service) Confirm(ctx context.Context, actorID, id string) (model.Reservation, error) {
	return s.transition(ctx, actorID, id, model.NotificationBookingConfirmed, s.decideConfirm)
}

func (s *Service) decideConfirm(cur model.Reservation) (model.ReservationStatus, error) {
	switch {
	case cur.Status == model.StatusConfirmed:
		return "", fmt.Errorf("reservation %s: %w", cur.ID, model.ErrAlreadyConfirmed)
	case cur.Status == model.StatusPending:
		return model.StatusConfirmed, nil
	case s.policy.ConfirmPolicy == model.ConfirmLenient:
		return model.StatusConfirmed, nil
	default:
		return "", fmt.Errorf("confirming %s reservation %s: %w", cur.Status, cur.ID, model.ErrInvalidTransition)
	}
}

// Cancel moves a pending or confirmed reservation to canceled.
func (s *Service) Cancel(ctx context.Context, actorID, id string) (model.Reservation, error) {
	return s.transition(ctx, actorID, id, model.NotificationBookingCanceled, decideCancel)
}

func decideCancel(cur model.Reservation) (model.ReservationStatus, error) {
	if !cur.Status.IsTerminal() {
		return model.StatusCanceled, nil
	}
	if cur.Status == model.StatusCanceled {
		return "", fmt.Errorf("reservation %s: %w", cur.ID, model.ErrAlreadyCanceled)
	}
	return "", fmt.Errorf("reservation %s: %w", cur.ID, model.ErrCompletedCannotCancel)
}

// Complete moves a confirmed reservation to completed.
func (s *Service) Complete(ctx context.Context, actorID, id string) (model.Reservation, error) {
	return s.transition(ctx, actorID, id, model.NotificationBookingCompleted, decideComplete)
}

func decideComplete(cur model.Reservation) (model.ReservationStatus, error) {
	if cur.Status != model.StatusConfirmed {
		return "", fmt.Errorf("completing %s reservation %s: %w", cur.Status, cur.ID, model.ErrInvalidTransition)
	}
	return model.StatusCompleted, nil
}

// CompleteElapsed completes every confirmed reservation that ended at or
// before now. Reservations that changed status in the meantime are skipped;
// other failures are collected and returned alongside what did complete.
func (s *Service) CompleteElapsed(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	endsBy := now.UTC()
	due, err := s.store.ListReservations(ctx, store.ReservationFilter{
		Statuses: []model.ReservationStatus{model.StatusConfirmed},
		EndsBy:   &endsBy,
	})
	if err != nil {
		return nil, fmt.Errorf("listing elapsed reservations: %w", err)
	}

	var done []model.Reservation
	var errs []error
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		completed, err := s.transition(ctx, "", r.ID, model.NotificationBookingCompleted, decideComplete)
		switch {
		case err == nil:
			done = append(done, completed)
		case errors.Is(err, model.ErrInvalidTransition), errors.Is(err, model.ErrNotFound):
			s.logger.Debug("skipping reservation", "id", r.ID, "reason", err)
		default:
			errs = append(errs, err)
		}
	}

	if len(done) > 0 {
		s.logger.Info("completed elapsed reservations", "count", len(done))
	}
	return done, errors.Join(errs...)
}

func (s *Service) transition(
	ctx context.Context,
	actorID, id string,
	kind model.NotificationType,
	decide store.TransitionFunc,
) (model.Reservation, error) {
	r, err := s.store.TransitionReservation(ctx, id, decide)
	if err != nil {
		return model.Reservation{}, err
	}

	s.logger.Info("reservation updated",
		"id", r.ID, "status", r.Status, "actor", actorID, "resource", r.ResourceID)

	owner, err := s.dir.GetOwner(ctx, r.ResourceID)
	if err != nil {
		s.logger.Warn("owner lookup failed, notifying requester only",
			"resource", r.ResourceID, "reservation", r.ID, "error", err)
		owner = ""
	}
	s.announce(ctx, r, owner, kind)
	return r, nil
}

// Get returns a single reservation.
func (s *Service) Get(ctx context.Context, id string) (*model.Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

// List returns reservations matching filter.
func (s *Service) List(ctx context.Context, filter store.ReservationFilter) ([]model.Reservation, error) {
	return s.store.ListReservations(ctx, filter)
}

// ListForResource returns a resource's reservations in start order,
// optionally restricted to the given statuses.
func (s *Service) ListForResource(
	ctx context.Context,
	resourceID string,
	statuses ...model.ReservationStatus,
) ([]model.Reservation, error) {
	return s.store.ListReservations(ctx, store.ReservationFilter{
		ResourceID: &resourceID,
		Statuses:   statuses,
	})
}

// ListForRequester returns a requester's reservations, most recent first.
func (s *Service) ListForRequester(
	ctx context.Context,
	requesterID string,
	statuses ...model.ReservationStatus,
) ([]model.Reservation, error) {
	return s.store.ListReservations(ctx, store.ReservationFilter{
		RequesterID: &requesterID,
		Statuses:    statuses,
		SortDesc:    true,
	})
}

// Delete removes a reservation whatever its status. Nobody is notified.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	if err := s.store.DeleteReservation(ctx, id); err != nil {
		return err
	}
	s.logger.Info("reservation deleted", "id", id, "actor", actorID)
	return nil
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}
