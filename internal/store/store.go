package store

import (
	"context"
	"time"

	"github.com/nhle/venuebook/internal/model"
)

// ReservationFilter controls filtering, sorting, and pagination for
// reservation queries. Nil fields match everything.
type ReservationFilter struct {
	ResourceID  *string
	RequesterID *string
	Statuses    []model.ReservationStatus // any of these; empty means all
	EndsBy      *time.Time                // end_at <= EndsBy
	SortDesc    bool                      // by start time
	Limit       int
	Offset      int
}

// NotificationFilter controls notification queries for one recipient.
type NotificationFilter struct {
	RecipientID string
	UnreadOnly  bool
	Limit       int
}

// TransitionFunc inspects the current state of a reservation inside the
// transition transaction and returns the status to move it to, or an error
// to abort without writing.
type TransitionFunc func(current model.Reservation) (model.ReservationStatus, error)

// Stats summarises the stored data.
type Stats struct {
	Resources           int                             `json:"resources"`
	Reservations        int                             `json:"reservations"`
	ReservationsByState map[model.ReservationStatus]int `json:"reservations_by_status"`
	Notifications       int                             `json:"notifications"`
	UnreadNotifications int                             `json:"unread_notifications"`
}

// Store defines the persistence interface for resources, reservations and
// notifications. It is the single source of truth for availability.
type Store interface {
	// === Reservations ===

	// CreateReservationIfAvailable checks the live reservations of the
	// resource and inserts r as one atomic step. It returns a
	// *model.ConflictError when r overlaps a live reservation.
	CreateReservationIfAvailable(ctx context.Context, r model.Reservation) (model.Reservation, error)

	// InsertReservation writes r without any availability check. Paired
	// with a separate ListReservations it is the check-then-insert sequence
	// that can double-book under concurrency; use
	// CreateReservationIfAvailable for anything that must stay consistent.
	InsertReservation(ctx context.Context, r model.Reservation) (model.Reservation, error)

	GetReservation(ctx context.Context, id string) (*model.Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]model.Reservation, error)
	TransitionReservation(ctx context.Context, id string, decide TransitionFunc) (model.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error)
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipientID string) (*model.Notification, error)
	DeleteNotification(ctx context.Context, id, recipientID string) error
	CountUnreadNotifications(ctx context.Context, recipientID string) (int, error)

	// === Resources ===

	UpsertResource(ctx context.Context, res model.Resource) (model.Resource, error)
	GetResource(ctx context.Context, id string) (*model.Resource, error)
	ListResources(ctx context.Context, ownerID *string) ([]model.Resource, error)
	DeleteResource(ctx context.Context, id string) error

	// === Housekeeping ===

	Stats(ctx context.Context) (Stats, error)
	Reset(ctx context.Context) error
}
