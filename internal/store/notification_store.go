package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/venuebook/internal/model"
)

const notificationColumns = `id, recipient_id, sender_id, type, title, message,
	resource_id, reservation_id, is_read, created_at`

// CreateNotification inserts a new notification record and returns it with
// its ID and creation time filled in.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.Notification,
) (model.Notification, error) {
	if strings.TrimSpace(n.RecipientID) == "" {
		return model.Notification{}, model.Invalid("recipient", "must not be empty")
	}
	if strings.TrimSpace(n.Message) == "" {
		return model.Notification{}, model.Invalid("message", "must not be empty")
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Type == "" {
		n.Type = model.NotificationGeneral
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (
			id, recipient_id, sender_id, type, title, message,
			resource_id, reservation_id, is_read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.RecipientID, n.SenderID, string(n.Type), n.Title, n.Message,
		n.ResourceID, n.ReservationID, boolToInt(n.Read), n.CreatedAt.UTC(),
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("creating notification: %w", err)
	}

	return n, nil
}

// ListNotifications retrieves a recipient's notifications, newest first.
func (s *SQLiteStore) ListNotifications(
	ctx context.Context,
	filter NotificationFilter,
) ([]model.Notification, error) {
	query := "SELECT " + notificationColumns + " FROM notifications WHERE recipient_id = ?"
	args := []interface{}{filter.RecipientID}
	if filter.UnreadOnly {
		query += " AND is_read = 0"
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var notifications []model.Notification
	if err := s.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("querying notifications for %s: %w", filter.RecipientID, err)
	}
	return notifications, nil
}

// MarkNotificationRead marks a notification as read if it belongs to
// recipientID, and returns the updated record.
func (s *SQLiteStore) MarkNotificationRead(
	ctx context.Context,
	id, recipientID string,
) (*model.Notification, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient_id = ?",
		id, recipientID,
	)
	if err != nil {
		return nil, fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("notification %s: %w", id, model.ErrNotFound)
	}

	var n model.Notification
	err = tx.GetContext(ctx, &n,
		"SELECT "+notificationColumns+" FROM notifications WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing notification %s: %w", id, err)
	}
	return &n, nil
}

// DeleteNotification removes a notification if it belongs to recipientID.
func (s *SQLiteStore) DeleteNotification(
	ctx context.Context,
	id, recipientID string,
) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE id = ? AND recipient_id = ?",
		id, recipientID,
	)
	if err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// CountUnreadNotifications returns how many notifications recipientID has
// not acknowledged.
func (s *SQLiteStore) CountUnreadNotifications(
	ctx context.Context,
	recipientID string,
) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0",
		recipientID,
	)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications for %s: %w", recipientID, err)
	}
	return n, nil
}
