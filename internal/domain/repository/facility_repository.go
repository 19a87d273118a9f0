package repository

import (
	"context"

	"occupancy-service/internal/domain/entity"
)

// FacilityRepository defines access to the facility registry.
type FacilityRepository interface {
	GetByID(ctx context.Context, id int) (*entity.Facility, error)
	GetByType(ctx context.Context, facilityType string) ([]entity.Facility, error)
	All(ctx context.Context) ([]entity.Facility, error)
}
