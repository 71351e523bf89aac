package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/venuebook/internal/model"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// dsn carries the pragmas in the URI so every connection the pool opens
// gets them. busy_timeout makes a writer wait for the lock instead of
// failing with SQLITE_BUSY.
func dsn(dbPath string) string {
	return dbPath + "?_txlock=immediate&_time_format=sqlite" +
		"&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath in WAL
// mode and runs any pending schema migrations.
//
// The pool is capped at one connection and transactions begin IMMEDIATE, so
// every read-check-write transaction holds the write lock from its first
// statement. That is what makes CreateReservationIfAvailable atomic across
// goroutines and across processes sharing the file.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Stats counts resources, reservations per status, and notifications.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ReservationsByState: make(map[model.ReservationStatus]int)}

	if err := s.db.GetContext(ctx, &st.Resources, "SELECT COUNT(*) FROM resources"); err != nil {
		return Stats{}, fmt.Errorf("counting resources: %w", err)
	}

	var byStatus []struct {
		Status string `db:"status"`
		Count  int    `db:"n"`
	}
	err := s.db.SelectContext(ctx, &byStatus,
		"SELECT status, COUNT(*) AS n FROM reservations GROUP BY status")
	if err != nil {
		return Stats{}, fmt.Errorf("counting reservations: %w", err)
	}
	for _, row := range byStatus {
		st.ReservationsByState[model.ReservationStatus(row.Status)] = row.Count
		st.Reservations += row.Count
	}

	err = s.db.GetContext(ctx, &st.Notifications, "SELECT COUNT(*) FROM notifications")
	if err != nil {
		return Stats{}, fmt.Errorf("counting notifications: %w", err)
	}
	err = s.db.GetContext(ctx, &st.UnreadNotifications,
		"SELECT COUNT(*) FROM notifications WHERE is_read = 0")
	if err != nil {
		return Stats{}, fmt.Errorf("counting unread notifications: %w", err)
	}

	return st, nil
}

// Reset deletes every resource, reservation and notification.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"notifications", "reservations", "resources"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
