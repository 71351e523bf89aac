package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/venuebook/internal/booking"
	"github.com/nhle/venuebook/internal/directory"
	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/seed"
	"github.com/nhle/venuebook/tests/testutil"
)

const sample = `
resources:
  - id: pitch-1
    name: Riverside Pitch
    location: North Park
    owner_id: olivia
    hourly_rate: 40
    opening_time: "08:00"
    closing_time: "22:00"
bookings:
  - resource: pitch-1
    requester: alice
    date: 2025-06-01
    start: "10:00"
    hours: 2
    status: confirmed
  - resource: pitch-1
    requester: bob
    date: 2025-06-01
    start: "11:00"
    hours: 1
  - resource: pitch-1
    requester: carol
    date: 2025-06-01
    start: "14:00"
    hours: 1.5
    status: completed
  - resource: nowhere
    requester: dave
    date: 2025-06-01
    start: "09:00"
    hours: 1
`

func TestLoadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	f, err := seed.Load(path)
	require.NoError(t, err)
	require.Len(t, f.Resources, 1)
	require.Len(t, f.Bookings, 4)
	assert.Equal(t, "olivia", f.Resources[0].OwnerID)

	s := testutil.NewTestStore(t)
	dir := directory.New(s)
	svc := booking.NewService(s, dir, nil, booking.Options{})
	ctx := context.Background()

	sum, err := seed.Apply(ctx, f, dir, svc, nil)
	require.NoError(t, err)
	assert.Equal(t, seed.Summary{Resources: 1, Created: 2, Skipped: 2}, sum)

	rs, err := svc.ListForResource(ctx, "pitch-1")
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, model.StatusConfirmed, rs[0].Status)
	assert.Equal(t, 80.0, rs[0].Cost)
	assert.Equal(t, model.StatusCompleted, rs[1].Status)
	assert.Equal(t, 60.0, rs[1].Cost)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := seed.Parse([]byte("resources:\n  - id: x\n    colour: red\n"))
	assert.Error(t, err)

	_, err = seed.Parse([]byte("bookings:\n  - resource: x\n    status: tentative\n"))
	assert.ErrorContains(t, err, "unknown status")
}
