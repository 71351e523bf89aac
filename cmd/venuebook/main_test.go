package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/store"
)

func TestRunBookingLifecycle(t *testing.T) {
	dir := t.TempDir()
	common := []string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--db", filepath.Join(dir, "venuebook.db"),
	}
	with := func(args ...string) []string { return append(args, common...) }

	require.NoError(t, run(with("resource", "add", "--id", "court-1", "--name", "Court 1", "--owner", "olivia", "--rate", "30")))
	require.NoError(t, run(with("book", "--resource", "court-1", "--user", "alice",
		"--date", "2025-06-01", "--start", "09:00", "--hours", "2")))

	err := run(with("book", "--resource", "court-1", "--user", "bob",
		"--date", "2025-06-01", "--start", "10:00", "--hours", "1"))
	_, isConflict := model.AsConflict(err)
	assert.True(t, isConflict, "got %v", err)

	require.NoError(t, run(with("book", "--resource", "court-1", "--user", "bob",
		"--date", "2025-06-01", "--start", "11:00", "--hours", "1")))

	s, err := store.NewSQLiteStore(filepath.Join(dir, "venuebook.db"))
	require.NoError(t, err)
	ctx := context.Background()
	resourceID := "court-1"
	rs, err := s.ListReservations(ctx, store.ReservationFilter{ResourceID: &resourceID})
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, 60.0, rs[0].Cost)
	require.NoError(t, s.Close())

	require.NoError(t, run(with("confirm", rs[0].ID, "--user", "olivia")))
	require.NoError(t, run(with("cancel", rs[1].ID, "--user", "bob")))
	assert.ErrorIs(t, run(with("cancel", rs[1].ID, "--user", "bob")), model.ErrAlreadyCanceled)
	require.NoError(t, run(with("stats")))

	s, err = store.NewSQLiteStore(filepath.Join(dir, "venuebook.db"))
	require.NoError(t, err)
	defer s.Close()

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.ReservationsByState[model.StatusConfirmed])
	assert.Equal(t, 1, st.ReservationsByState[model.StatusCanceled])

	// Two creates, one confirm and one cancel, each telling both parties.
	assert.Equal(t, 8, st.Notifications)
	unread, err := s.CountUnreadNotifications(ctx, "olivia")
	require.NoError(t, err)
	assert.Equal(t, 4, unread)
}

func TestRunRejectsBadInvocations(t *testing.T) {
	assert.Error(t, run(nil))
	assert.ErrorContains(t, run([]string{"frobnicate"}), "unknown subcommand")
	assert.ErrorContains(t, run([]string{"confirm", "--db", filepath.Join(t.TempDir(), "x.db")}), "usage")
	assert.ErrorContains(t, run([]string{"book", "--user", "alice"}), "--resource is required")
	assert.NoError(t, run([]string{"version"}))
}

// capture runs args and returns what the subcommand printed.
func capture(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()
	require.NoError(t, run(args))
	return buf.String()
}

func TestRunFreeAndQuote(t *testing.T) {
	dir := t.TempDir()
	common := []string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--db", filepath.Join(dir, "venuebook.db"),
	}
	with := func(args ...string) []string { return append(args, common...) }

	require.NoError(t, run(with("resource", "add", "--id", "court-1", "--name", "Court 1",
		"--owner", "olivia", "--rate", "30", "--opens", "08:00", "--closes", "20:00")))
	require.NoError(t, run(with("book", "--resource", "court-1", "--user", "alice",
		"--date", "2025-06-01", "--start", "09:00", "--hours", "2")))
	require.NoError(t, run(with("book", "--resource", "court-1", "--user", "bob",
		"--date", "2025-06-01", "--start", "14:00", "--hours", "1")))

	out := capture(t, with("free", "--resource", "court-1", "--date", "2025-06-01")...)
	for _, want := range []string{
		"2025-06-01 08:00", "2025-06-01 09:00",
		"2025-06-01 11:00", "2025-06-01 14:00",
		"2025-06-01 15:00", "2025-06-01 20:00",
	} {
		assert.Contains(t, out, want)
	}

	out = capture(t, with("free", "--resource", "court-1", "--date", "2025-06-01", "--min-hours", "2")...)
	assert.NotContains(t, out, "2025-06-01 08:00")
	assert.Contains(t, out, "2025-06-01 11:00")
	assert.Contains(t, out, "2025-06-01 15:00")

	out = capture(t, with("book", "--quote", "--resource", "court-1",
		"--date", "2025-06-01", "--start", "12:00", "--hours", "1")...)
	assert.Contains(t, out, "30.00 available")

	out = capture(t, with("book", "--quote", "--resource", "court-1",
		"--date", "2025-06-01", "--start", "10:00", "--hours", "1")...)
	assert.Contains(t, out, "taken by ")

	err := run(with("free", "--resource", "court-1", "--min-hours", "-1"))
	assert.Error(t, err)
	err = run(with("free", "--resource", "court-9", "--date", "2025-06-01"))
	assert.True(t, model.IsNotFound(err), "got %v", err)
}

func TestRunConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "config.yaml")
	db := filepath.Join(dir, "venuebook.db")
	t.Setenv("VENUEBOOK_BOOKING_COST_POLICY", "client")

	out := capture(t, "config", "init", "--config", path, "--db", db)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cost_policy: client")
	assert.Contains(t, string(data), db)

	err = run([]string{"config", "init", "--config", path})
	assert.ErrorContains(t, err, "already exists")
	require.NoError(t, run([]string{"config", "init", "--config", path, "--force", "--db", db}))

	out = capture(t, "config", "show", "--config", path)
	assert.Contains(t, out, "confirm_policy: pending_only")
	assert.Contains(t, out, "cost_policy: client")
	assert.Contains(t, out, db)

	assert.Error(t, run([]string{"config"}))
	assert.Error(t, run([]string{"config", "edit"}))
}
