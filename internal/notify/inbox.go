package notify

import (
	"context"

	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/store"
)

// InboxStore is the slice of the store the inbox reads and acknowledges through.
type InboxStore interface {
	ListNotifications(ctx context.Context, filter store.NotificationFilter) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipientID string) (*model.Notification, error)
	DeleteNotification(ctx context.Context, id, recipientID string) error
	CountUnreadNotifications(ctx context.Context, recipientID string) (int, error)
}

// Inbox exposes a recipient's notifications. Every operation is scoped to
// the recipient: touching someone else's notification reports not found.
type Inbox struct {
	store InboxStore
}

// NewInbox creates an Inbox over s.
func NewInbox(s InboxStore) *Inbox {
	return &Inbox{store: s}
}

// List returns the recipient's notifications, newest first.
func (i *Inbox) List(ctx context.Context, recipientID string, unreadOnly bool) ([]model.Notification, error) {
	return i.store.ListNotifications(ctx, store.NotificationFilter{
		RecipientID: recipientID,
		UnreadOnly:  unreadOnly,
	})
}

// MarkRead acknowledges a notification.
func (i *Inbox) MarkRead(ctx context.Context, id, recipientID string) (*model.Notification, error) {
	return i.store.MarkNotificationRead(ctx, id, recipientID)
}

// Delete removes a notification.
func (i *Inbox) Delete(ctx context.Context, id, recipientID string) error {
	return i.store.DeleteNotification(ctx, id, recipientID)
}

// UnreadCount returns the number of unacknowledged notifications.
func (i *Inbox) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return i.store.CountUnreadNotifications(ctx, recipientID)
}
