package model

import "time"

// Resource is a bookable venue.
type Resource struct {
	ID       string `json:"id" db:"id" yaml:"id"`
	Name     string `json:"name" db:"name" yaml:"name"`
	Location string `json:"location" db:"location" yaml:"location"`

	// OwnerID is the user who receives booking requests for this venue.
	OwnerID string `json:"owner_id" db:"owner_id" yaml:"owner_id"`

	// HourlyRate is the price of one hour of use.
	HourlyRate float64 `json:"hourly_rate" db:"hourly_rate" yaml:"hourly_rate"`

	// OpeningTime and ClosingTime are "HH:MM" wall-clock bounds in UTC.
	// Empty means open around the clock.
	OpeningTime string `json:"opening_time" db:"opening_time" yaml:"opening_time"`
	ClosingTime string `json:"closing_time" db:"closing_time" yaml:"closing_time"`

	CreatedAt time.Time `json:"created_at" db:"created_at" yaml:"-"`
}
