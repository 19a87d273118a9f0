package repository

import (
	"context"

	"occupancy-service/internal/domain/entity"
)

// Predictor is the external model service contract. Predict returns
// entity.ErrModelUnavailable when no trained model exists yet.
// Retrain kicks off a new training run; callers fire it asynchronously
// and must never let a training failure fail the request that
// triggered it.
type Predictor interface {
	Predict(ctx context.Context, facilityID int, reservationCount int, examWeek int) (*entity.Prediction, error)
	Retrain(ctx context.Context) error
}
