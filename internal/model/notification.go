package model

import "time"

// NotificationType tags what a notification is about.
type NotificationType string

// Notification type constants.
const (
	NotificationGeneral          NotificationType = "general"
	NotificationBookingCreated   NotificationType = "booking_created"
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingCanceled  NotificationType = "booking_canceled"
	NotificationBookingCompleted NotificationType = "booking_completed"
)

// Notification is a message delivered to one recipient about a booking
// event. Only Read changes after creation.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// RecipientID is the user this notification is addressed to.
	RecipientID string `json:"recipient_id" db:"recipient_id"`

	// SenderID is the user whose action produced the notification.
	SenderID string `json:"sender_id" db:"sender_id"`

	Type    NotificationType `json:"type" db:"type"`
	Title   string           `json:"title" db:"title"`
	Message string           `json:"message" db:"message"`

	// ResourceID and ReservationID correlate the notification with the
	// booking that triggered it. Both are empty for general notifications.
	ResourceID    string `json:"resource_id,omitempty" db:"resource_id"`
	ReservationID string `json:"reservation_id,omitempty" db:"reservation_id"`

	// Read indicates whether the recipient has acknowledged it.
	Read bool `json:"read" db:"is_read"`

	// CreatedAt is when this notification was persisted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
