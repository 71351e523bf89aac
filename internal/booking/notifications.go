package booking

import (
	"context"

	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/notify"
)

type wording struct {
	title string
	body  string
}

// Wording for the requester's and the owner's copy of each event.
var templates = map[model.NotificationType]struct{ requester, owner wording }{
	model.NotificationBookingCreated: {
		requester: wording{"Booking created", "Your booking has been created and is pending confirmation."},
		owner:     wording{"New booking request", "A new booking was requested for your playground."},
	},
	model.NotificationBookingConfirmed: {
		requester: wording{"Booking confirmed", "Your booking has been confirmed."},
		owner:     wording{"You confirmed a booking", "You have confirmed a booking for your playground."},
	},
	model.NotificationBookingCanceled: {
		requester: wording{"Booking canceled", "Your booking has been canceled."},
		owner:     wording{"Booking canceled", "A booking was canceled."},
	},
	model.NotificationBookingCompleted: {
		requester: wording{"Booking completed", "Your booking has been completed."},
		owner:     wording{"Booking completed", "A booking for your playground was completed."},
	},
}

// events builds the requester and owner notifications for a state change.
// The owner copy is omitted when ownerID is unknown.
func events(r model.Reservation, ownerID string, kind model.NotificationType) []notify.Event {
	t, ok := templates[kind]
	if !ok {
		return nil
	}

	// Creation is the requester's act and confirmation the owner's; for the
	// rest each party hears it from the other.
	toRequesterFrom, toOwnerFrom := ownerID, r.RequesterID
	switch kind {
	case model.NotificationBookingCreated:
		toRequesterFrom = r.RequesterID
	case model.NotificationBookingConfirmed:
		toOwnerFrom = ownerID
	}

	out := []notify.Event{{
		RecipientID:   r.RequesterID,
		SenderID:      toRequesterFrom,
		Type:          kind,
		Title:         t.requester.title,
		Body:          t.requester.body,
		ResourceID:    r.ResourceID,
		ReservationID: r.ID,
	}}
	if ownerID != "" {
		out = append(out, notify.Event{
			RecipientID:   ownerID,
			SenderID:      toOwnerFrom,
			Type:          kind,
			Title:         t.owner.title,
			Body:          t.owner.body,
			ResourceID:    r.ResourceID,
			ReservationID: r.ID,
		})
	}
	return out
}

// announce hands the notifications for r to the dispatcher. It never fails.
func (s *Service) announce(ctx context.Context, r model.Reservation, ownerID string, kind model.NotificationType) {
	if s.notifier == nil {
		return
	}
	evs := events(r, ownerID, kind)
	if !s.notifier.Submit(ctx, evs...) {
		s.logger.Warn("notifications not queued",
			"reservation", r.ID, "type", kind, "count", len(evs))
	}
}
