package repository

import (
	"context"

	"occupancy-service/internal/domain/entity"
)

// WeatherProvider supplies current outdoor conditions. Implementations
// must fail soft: when the upstream source is unreachable they return
// a fallback value set, never an error.
type WeatherProvider interface {
	Current(ctx context.Context) entity.Weather
}
