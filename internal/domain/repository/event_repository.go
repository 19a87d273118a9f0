package repository

import (
	"context"

	"occupancy-service/internal/domain/entity"
)

// EventRepository defines access to the curated event catalog.
type EventRepository interface {
	Add(ctx context.Context, event *entity.Event) error
	ActiveOnDate(ctx context.Context, date string) ([]entity.Event, error)
	ByFacility(ctx context.Context, facilityID int) ([]entity.Event, error)
	Upcoming(ctx context.Context, from string, to string) ([]entity.Event, error)
	// ActiveImpact returns the summed impact ratio of the facility's
	// active events on the given date, capped at 1.0.
	ActiveImpact(ctx context.Context, facilityID int, date string) (float64, error)
}
