package repository

import (
	"context"
	"time"

	"occupancy-service/internal/domain/entity"
)

// PredictionErrorRepository defines the append-only prediction error
// log and the latest-only performance report snapshot.
type PredictionErrorRepository interface {
	Append(ctx context.Context, record *entity.PredictionError) error
	FindSince(ctx context.Context, since time.Time) ([]entity.PredictionError, error)
	// FindRecent returns up to limit records, newest last.
	FindRecent(ctx context.Context, limit int) ([]entity.PredictionError, error)
	Count(ctx context.Context) (int64, error)

	SaveReport(ctx context.Context, report *entity.PerformanceReport) error
	LatestReport(ctx context.Context) (*entity.PerformanceReport, error)
}
