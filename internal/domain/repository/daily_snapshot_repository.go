package repository

import (
	"context"

	"occupancy-service/internal/domain/entity"
)

// DailySnapshotRepository persists the end-of-day entry counter state
// produced by the midnight rollover.
type DailySnapshotRepository interface {
	Save(ctx context.Context, snapshot *entity.DailySnapshot) error
	ByDate(ctx context.Context, date string) (*entity.DailySnapshot, error)
}
