// Package directory answers questions about bookable resources: who owns
// them, what they cost, and when they are open.
package directory

import (
	"context"
	"fmt"

	"github.com/nhle/venuebook/internal/model"
	"github.com/nhle/venuebook/internal/store"
	"github.com/nhle/venuebook/internal/timeslot"
)

// Directory is the resource directory backed by the store's resources table.
type Directory struct {
	store store.Store
}

// New creates a Directory over s.
func New(s store.Store) *Directory {
	return &Directory{store: s}
}

// Get returns the resource with the given ID.
func (d *Directory) Get(ctx context.Context, resourceID string) (*model.Resource, error) {
	return d.store.GetResource(ctx, resourceID)
}

// GetOwner returns the user ID of the resource owner.
func (d *Directory) GetOwner(ctx context.Context, resourceID string) (string, error) {
	res, err := d.store.GetResource(ctx, resourceID)
	if err != nil {
		return "", err
	}
	return res.OwnerID, nil
}

// GetRate returns the hourly rate of the resource.
func (d *Directory) GetRate(ctx context.Context, resourceID string) (float64, error) {
	res, err := d.store.GetResource(ctx, resourceID)
	if err != nil {
		return 0, err
	}
	return res.HourlyRate, nil
}

// Register validates and stores a resource, replacing any with the same ID.
func (d *Directory) Register(ctx context.Context, res model.Resource) (model.Resource, error) {
	for field, clock := range map[string]string{
		"opening time": res.OpeningTime,
		"closing time": res.ClosingTime,
	} {
		if clock == "" {
			continue
		}
		if _, err := timeslot.ParseClock(clock); err != nil {
			return model.Resource{}, model.Invalid(field, "%q is not an HH:MM time", clock)
		}
	}

	saved, err := d.store.UpsertResource(ctx, res)
	if err != nil {
		return model.Resource{}, fmt.Errorf("registering resource: %w", err)
	}
	return saved, nil
}

// List returns every registered resource.
func (d *Directory) List(ctx context.Context) ([]model.Resource, error) {
	return d.store.ListResources(ctx, nil)
}

// ListByOwner returns the resources owned by ownerID.
func (d *Directory) ListByOwner(ctx context.Context, ownerID string) ([]model.Resource, error) {
	return d.store.ListResources(ctx, &ownerID)
}

// Remove deletes a resource. Existing reservations are left untouched.
func (d *Directory) Remove(ctx context.Context, resourceID string) error {
	return d.store.DeleteResource(ctx, resourceID)
}
