package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/venuebook/internal/conflict"
	"github.com/nhle/venuebook/internal/model"
)

const reservationColumns = `id, resource_id, requester_id, start_at, end_at,
	cost, status, created_at, updated_at`

// reservationRow mirrors the reservations table; interval bounds are unix seconds.
type reservationRow struct {
	ID          string    `db:"id"`
	ResourceID  string    `db:"resource_id"`
	RequesterID string    `db:"requester_id"`
	StartAt     int64     `db:"start_at"`
	EndAt       int64     `db:"end_at"`
	Cost        float64   `db:"cost"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row reservationRow) toModel() model.Reservation {
	return model.Reservation{
		ID:          row.ID,
		ResourceID:  row.ResourceID,
		RequesterID: row.RequesterID,
		Interval: model.Interval{
			Start: time.Unix(row.StartAt, 0).UTC(),
			End:   time.Unix(row.EndAt, 0).UTC(),
		},
		Cost:      row.Cost,
		Status:    model.ReservationStatus(row.Status),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

func rowsToModels(rows []reservationRow) []model.Reservation {
	out := make([]model.Reservation, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out
}

// prepareReservation fills defaults and validates a reservation before insert.
func prepareReservation(r model.Reservation) (model.Reservation, error) {
	if strings.TrimSpace(r.ResourceID) == "" {
		return r, model.Invalid("resource", "must not be empty")
	}
	if strings.TrimSpace(r.RequesterID) == "" {
		return r, model.Invalid("requester", "must not be empty")
	}
	r.Interval = model.Interval{
		Start: r.Interval.Start.UTC().Truncate(time.Second),
		End:   r.Interval.End.UTC().Truncate(time.Second),
	}
	if !r.Interval.Valid() {
		return r, model.Invalid("interval", "start must be before end")
	}
	if r.Cost < 0 {
		return r, model.Invalid("cost", "must not be negative")
	}
	if r.Status == "" {
		r.Status = model.StatusPending
	}
	if !r.Status.Valid() {
		return r, model.Invalid("status", "unknown status %q", r.Status)
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return r, nil
}

func insertReservation(ctx context.Context, ex sqlx.ExecerContext, r model.Reservation) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO reservations (
			id, resource_id, requester_id, start_at, end_at,
			cost, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ResourceID, r.RequesterID, r.Interval.Start.Unix(), r.Interval.End.Unix(),
		r.Cost, string(r.Status), r.CreatedAt, r.UpdatedAt,
	)
	return err
}

// findConflict loads the live reservations of resourceID that start before
// candidate ends, ordered by start, and returns the first one overlapping
// candidate. excludeID is skipped so a reservation never conflicts with itself.
func findConflict(
	ctx context.Context,
	q sqlx.QueryerContext,
	resourceID string,
	candidate model.Interval,
	excludeID string,
) (*model.ConflictError, error) {
	var rows []reservationRow
	err := sqlx.SelectContext(ctx, q, &rows, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE resource_id = ? AND status IN (?, ?) AND start_at < ? AND id != ?
		ORDER BY start_at, id`,
		resourceID, string(model.StatusPending), string(model.StatusConfirmed),
		candidate.End.Unix(), excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading live reservations for %s: %w", resourceID, err)
	}

	existing, found := conflict.FindReservation(candidate, rowsToModels(rows))
	if !found {
		return nil, nil
	}
	return &model.ConflictError{
		ResourceID:    resourceID,
		ReservationID: existing.ID,
		Existing:      existing.Interval,
	}, nil
}

// CreateReservationIfAvailable runs the conflict check and the insert in one
// write transaction.
func (s *SQLiteStore) CreateReservationIfAvailable(
	ctx context.Context,
	r model.Reservation,
) (model.Reservation, error) {
	r, err := prepareReservation(r)
	if err != nil {
		return model.Reservation{}, err
	}
	if !r.Status.IsLive() {
		return model.Reservation{}, model.Invalid("status", "new reservations must be live, got %q", r.Status)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ce, err := findConflict(ctx, tx, r.ResourceID, r.Interval, r.ID)
	if err != nil {
		return model.Reservation{}, err
	}
	if ce != nil {
		return model.Reservation{}, ce
	}

	if err := insertReservation(ctx, tx, r); err != nil {
		return model.Reservation{}, fmt.Errorf("creating reservation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Reservation{}, fmt.Errorf("committing reservation %s: %w", r.ID, err)
	}

	return r, nil
}

// InsertReservation writes r without checking availability, so two callers
// that checked first can both succeed with overlapping intervals.
func (s *SQLiteStore) InsertReservation(
	ctx context.Context,
	r model.Reservation,
) (model.Reservation, error) {
	r, err := prepareReservation(r)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := insertReservation(ctx, s.db, r); err != nil {
		return model.Reservation{}, fmt.Errorf("inserting reservation: %w", err)
	}
	return r, nil
}

// GetReservation retrieves a single reservation by ID.
func (s *SQLiteStore) GetReservation(
	ctx context.Context,
	id string,
) (*model.Reservation, error) {
	r, err := getReservation(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func getReservation(ctx context.Context, q sqlx.QueryerContext, id string) (model.Reservation, error) {
	var row reservationRow
	err := sqlx.GetContext(ctx, q, &row,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, fmt.Errorf("reservation %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Reservation{}, fmt.Errorf("getting reservation %s: %w", id, err)
	}
	return row.toModel(), nil
}

// ListReservations retrieves reservations matching the filter, ordered by
// start time.
func (s *SQLiteStore) ListReservations(
	ctx context.Context,
	filter ReservationFilter,
) ([]model.Reservation, error) {
	query, args, err := buildReservationQuery(filter)
	if err != nil {
		return nil, err
	}

	var rows []reservationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying reservations: %w", err)
	}
	return rowsToModels(rows), nil
}

// buildReservationQuery assembles the SELECT for a ReservationFilter.
func buildReservationQuery(filter ReservationFilter) (string, []interface{}, error) {
	var conditions []string
	var args []interface{}

	if filter.ResourceID != nil {
		conditions = append(conditions, "resource_id = ?")
		args = append(args, *filter.ResourceID)
	}
	if filter.RequesterID != nil {
		conditions = append(conditions, "requester_id = ?")
		args = append(args, *filter.RequesterID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		conditions = append(conditions, "status IN (?)")
		args = append(args, statuses)
	}
	if filter.EndsBy != nil {
		conditions = append(conditions, "end_at <= ?")
		args = append(args, filter.EndsBy.Unix())
	}

	query := "SELECT " + reservationColumns + " FROM reservations"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY start_at %s, id %s", direction, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	// Expand the status slice into one placeholder per value.
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("building reservation query: %w", err)
	}
	return query, args, nil
}

// TransitionReservation reads the reservation, lets decide pick the next
// status, and writes it, all inside one write transaction. Moving a
// reservation from a non-live status back to a live one re-runs the
// conflict check so the live set stays non-overlapping.
func (s *SQLiteStore) TransitionReservation(
	ctx context.Context,
	id string,
	decide TransitionFunc,
) (model.Reservation, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getReservation(ctx, tx, id)
	if err != nil {
		return model.Reservation{}, err
	}

	next, err := decide(current)
	if err != nil {
		return model.Reservation{}, err
	}
	if !next.Valid() {
		return model.Reservation{}, fmt.Errorf("transition of %s to unknown status %q: %w",
			id, next, model.ErrInvalidTransition)
	}

	if next.IsLive() && !current.Status.IsLive() {
		ce, err := findConflict(ctx, tx, current.ResourceID, current.Interval, current.ID)
		if err != nil {
			return model.Reservation{}, err
		}
		if ce != nil {
			return model.Reservation{}, ce
		}
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		"UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?",
		string(next), now, id,
	)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("updating reservation %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return model.Reservation{}, fmt.Errorf("committing reservation %s: %w", id, err)
	}

	current.Status = next
	current.UpdatedAt = now
	return current, nil
}

// DeleteReservation removes a reservation by ID regardless of status.
func (s *SQLiteStore) DeleteReservation(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting reservation %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("reservation %s: %w", id, model.ErrNotFound)
	}
	return nil
}
