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

const resourceColumns = `id, name, location, owner_id, hourly_rate,
	opening_time, closing_time, created_at`

// UpsertResource inserts or replaces a resource. If the resource has no ID,
// a new UUID is generated.
func (s *SQLiteStore) UpsertResource(
	ctx context.Context,
	res model.Resource,
) (model.Resource, error) {
	if strings.TrimSpace(res.Name) == "" {
		return model.Resource{}, model.Invalid("name", "must not be empty")
	}
	if strings.TrimSpace(res.OwnerID) == "" {
		return model.Resource{}, model.Invalid("owner", "must not be empty")
	}
	if res.HourlyRate < 0 {
		return model.Resource{}, model.Invalid("hourly rate", "must not be negative")
	}
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resources (
			id, name, location, owner_id, hourly_rate,
			opening_time, closing_time, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			owner_id = excluded.owner_id,
			hourly_rate = excluded.hourly_rate,
			opening_time = excluded.opening_time,
			closing_time = excluded.closing_time`,
		res.ID, res.Name, res.Location, res.OwnerID, res.HourlyRate,
		res.OpeningTime, res.ClosingTime, res.CreatedAt.UTC(),
	)
	if err != nil {
		return model.Resource{}, fmt.Errorf("upserting resource %s: %w", res.ID, err)
	}

	return res, nil
}

// GetResource retrieves a single resource by ID.
func (s *SQLiteStore) GetResource(
	ctx context.Context,
	id string,
) (*model.Resource, error) {
	var res model.Resource
	err := s.db.GetContext(ctx, &res,
		"SELECT "+resourceColumns+" FROM resources WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resource %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting resource %s: %w", id, err)
	}
	return &res, nil
}

// ListResources retrieves all resources, or only those of ownerID when set.
func (s *SQLiteStore) ListResources(
	ctx context.Context,
	ownerID *string,
) ([]model.Resource, error) {
	query := "SELECT " + resourceColumns + " FROM resources"
	var args []interface{}
	if ownerID != nil {
		query += " WHERE owner_id = ?"
		args = append(args, *ownerID)
	}
	query += " ORDER BY name, id"

	var resources []model.Resource
	if err := s.db.SelectContext(ctx, &resources, query, args...); err != nil {
		return nil, fmt.Errorf("querying resources: %w", err)
	}
	return resources, nil
}

// DeleteResource removes a resource by ID. Its reservations are kept.
func (s *SQLiteStore) DeleteResource(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM resources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting resource %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("resource %s: %w", id, model.ErrNotFound)
	}
	return nil
}
