package resource

import (
	"context"
	"errors"

	"github.com/sipertani/sipertani/internal/farm"
)

var (
	// ErrNotConfirmed is returned when a status change was not confirmed.
	ErrNotConfirmed = errors.New("resource: status change not confirmed")
	// ErrNotFound is returned when the row is not in the loaded collection.
	ErrNotFound = errors.New("resource: record not found")
)

// ToggleHarvest flips a harvest between ready-to-sell and pending. Sold
// harvests are left as they are.
func ToggleHarvest(ctx context.Context, target Target[farm.Harvest], id farm.ID, confirmed bool) (farm.HarvestStatus, error) {
	if !confirmed {
		return "", ErrNotConfirmed
	}
	harvest, ok := target.Find(id)
	if !ok {
		return "", ErrNotFound
	}
	current := harvest.Status
	next := current.Toggled()
	if next == current {
		return current, nil
	}
	harvest.Status = next
	if err := target.Update(ctx, harvest); err != nil {
		return current, err
	}
	return next, nil
}
