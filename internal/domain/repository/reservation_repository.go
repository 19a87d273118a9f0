package repository

import (
	"context"

	"occupancy-service/internal/domain/entity"
)

// ReservationRepository defines the reservation store. Reservations
// are appended and status-transitioned, never deleted.
type ReservationRepository interface {
	Insert(ctx context.Context, reservation *entity.Reservation) error
	GetByID(ctx context.Context, id string) (*entity.Reservation, error)
	Update(ctx context.Context, reservation *entity.Reservation) error
	ByUser(ctx context.Context, userID string) ([]entity.Reservation, error)
	// ActiveForDate returns active reservations for one facility/date.
	ActiveForDate(ctx context.Context, facilityID int, date string) ([]entity.Reservation, error)
	All(ctx context.Context) ([]entity.Reservation, error)
}
