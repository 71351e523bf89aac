package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

// Reservation status constants.
const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCanceled  ReservationStatus = "canceled"
	StatusCompleted ReservationStatus = "completed"
)

// LiveStatuses are the statuses that occupy a resource.
var LiveStatuses = []ReservationStatus{StatusPending, StatusConfirmed}

// IsLive reports whether a reservation in this status counts toward availability.
func (s ReservationStatus) IsLive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether no further transition is expected from s.
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCanceled || s == StatusCompleted
}

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCanceled, StatusCompleted:
		return true
	}
	return false
}

// Interval is a half-open time range [Start, End) in UTC.
type Interval struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Hours returns the length of the interval in fractional hours.
func (iv Interval) Hours() float64 {
	return iv.Duration().Hours()
}

// Valid reports whether Start is strictly before End.
func (iv Interval) Valid() bool {
	return iv.Start.Before(iv.End)
}

// String formats the interval for messages and logs.
func (iv Interval) String() string {
	return iv.Start.UTC().Format(time.RFC3339) + " - " + iv.End.UTC().Format(time.RFC3339)
}

// Reservation is a time-bounded claim on a resource.
type Reservation struct {
	ID          string            `json:"id" db:"id"`
	ResourceID  string            `json:"resource_id" db:"resource_id"`
	RequesterID string            `json:"requester_id" db:"requester_id"`
	Interval    Interval          `json:"interval" db:"-"`
	Cost        float64           `json:"cost" db:"cost"`
	Status      ReservationStatus `json:"status" db:"status"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// IsLive reports whether the reservation currently occupies its resource.
func (r Reservation) IsLive() bool {
	return r.Status.IsLive()
}
