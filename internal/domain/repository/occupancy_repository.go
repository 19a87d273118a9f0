package repository

import (
	"context"
	"time"

	"occupancy-service/internal/domain/entity"
)

// OccupancyRepository defines the interface for the hourly occupancy
// history. The store is append-only; re-submitting an already
// aggregated batch duplicates records, which is the caller's problem.
type OccupancyRepository interface {
	AppendBatch(ctx context.Context, records []entity.OccupancyRecord) error
	FindByFacilityAndDate(ctx context.Context, facilityID int, date string) ([]entity.OccupancyRecord, error)
	FindSince(ctx context.Context, since time.Time) ([]entity.OccupancyRecord, error)
	FindByDate(ctx context.Context, date string) ([]entity.OccupancyRecord, error)
	Count(ctx context.Context) (int64, error)
}
