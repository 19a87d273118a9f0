package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"
	"occupancy-service/pkg/logger"
	"occupancy-service/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// maxAdvanceDays is how far ahead a reservation may be placed,
// inclusive at the boundary.
const maxAdvanceDays = 30

// capacityLimitFraction caps the summed party sizes of overlapping
// reservations relative to facility capacity.
const capacityLimitFraction = 0.8

// CreateReservationRequest is a citizen's booking request.
type CreateReservationRequest struct {
	UserID        string `json:"userId" validate:"required"`
	FacilityID    int    `json:"facilityId" validate:"required"`
	Date          string `json:"date" validate:"required"` // 2006-01-02
	StartHour     int    `json:"startHour" validate:"min=0,max=23"`
	DurationHours int    `json:"durationHours" validate:"required,min=1"`
	PartySize     int    `json:"partySize" validate:"required,min=1"`
}

// Reservations admits, rejects and cancels facility bookings.
type Reservations struct {
	facilityRepo    repository.FacilityRepository
	reservationRepo repository.ReservationRepository
	validate        *validator.Validate
	logger          logger.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
}

// NewReservations creates a new reservation service
func NewReservations(
	facilityRepo repository.FacilityRepository,
	reservationRepo repository.ReservationRepository,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *Reservations {
	return &Reservations{
		facilityRepo:    facilityRepo,
		reservationRepo: reservationRepo,
		validate:        validator.New(),
		logger:          logger,
		metrics:         metrics,
		now:             time.Now,
	}
}

// Create validates and stores a new reservation. Checks run in a
// fixed order and the first failure wins: required fields, facility
// existence, date window, time conflict, capacity.
func (s *Reservations) Create(ctx context.Context, req CreateReservationRequest) (*entity.Reservation, error) {
	if err := s.validate.Struct(req); err != nil {
		s.metrics.ReservationsRejected.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}

	facility, err := s.facilityRepo.GetByID(ctx, req.FacilityID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			s.metrics.ReservationsRejected.WithLabelValues("unknown_facility").Inc()
			return nil, fmt.Errorf("%w: facility %d", entity.ErrNotFound, req.FacilityID)
		}
		return nil, fmt.Errorf("facility lookup failed: %w", err)
	}

	if err := s.checkDateWindow(req.Date); err != nil {
		s.metrics.ReservationsRejected.WithLabelValues("date_window").Inc()
		return nil, err
	}

	existing, err := s.reservationRepo.ActiveForDate(ctx, req.FacilityID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing reservations: %w", err)
	}

	if conflicts(req, existing) {
		s.metrics.ReservationsRejected.WithLabelValues("conflict").Inc()
		return nil, fmt.Errorf("%w: time slot overlaps another reservation", entity.ErrConflict)
	}

	if exceedsCapacity(req, existing, facility.Capacity) {
		s.metrics.ReservationsRejected.WithLabelValues("capacity").Inc()
		return nil, fmt.Errorf("%w: insufficient capacity", entity.ErrConflict)
	}

	reservation := &entity.Reservation{
		ID:            uuid.NewString()[:8],
		UserID:        req.UserID,
		FacilityID:    req.FacilityID,
		FacilityName:  facility.Name,
		Date:          req.Date,
		StartHour:     req.StartHour,
		DurationHours: req.DurationHours,
		PartySize:     req.PartySize,
		Status:        entity.ReservationActive,
		CreatedAt:     s.now(),
	}
	if err := s.reservationRepo.Insert(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to store reservation: %w", err)
	}

	s.metrics.ReservationsCreated.Inc()
	s.logger.Info("Reservation created",
		"id", reservation.ID,
		"facilityId", reservation.FacilityID,
		"date", reservation.Date,
		"startHour", reservation.StartHour)
	return reservation, nil
}

// checkDateWindow rejects past dates and dates more than 30 days
// ahead. Today and today+30 are both accepted.
func (s *Reservations) checkDateWindow(date string) error {
	requested, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return fmt.Errorf("%w: invalid date %q", entity.ErrValidation, date)
	}

	today := s.now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)

	if requested.Before(today) {
		return fmt.Errorf("%w: cannot reserve a past date", entity.ErrValidation)
	}
	if requested.After(today.AddDate(0, 0, maxAdvanceDays)) {
		return fmt.Errorf("%w: cannot reserve more than %d days ahead", entity.ErrValidation, maxAdvanceDays)
	}
	return nil
}

// conflicts reports whether the request overlaps another user's
// active reservation. Two intervals [start, start+duration) overlap
// when newStart < existingEnd and newEnd > existingStart. A user's
// own reservations never conflict with each other here; that is
// long-standing observed behavior and tightening it would reject
// requests that were previously accepted.
func conflicts(req CreateReservationRequest, existing []entity.Reservation) bool {
	newStart := req.StartHour
	newEnd := req.StartHour + req.DurationHours

	for _, r := range existing {
		if r.UserID == req.UserID {
			continue
		}
		if newStart < r.EndHour() && newEnd > r.StartHour {
			return true
		}
	}
	return false
}

// exceedsCapacity sums the party sizes of active reservations
// covering the requested start hour plus the new party, and rejects
// when the total exceeds 80% of capacity. Exactly 80% is accepted.
func exceedsCapacity(req CreateReservationRequest, existing []entity.Reservation, capacity int) bool {
	total := req.PartySize
	for _, r := range existing {
		if r.StartHour <= req.StartHour && req.StartHour < r.EndHour() {
			total += r.PartySize
		}
	}
	return float64(total) > capacityLimitFraction*float64(capacity)
}

// Cancel transitions a reservation from active to cancelled. The
// transition is terminal; cancelling an already-cancelled, missing or
// foreign reservation is rejected with a descriptive error.
func (s *Reservations) Cancel(ctx context.Context, id, userID string) (*entity.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, fmt.Errorf("%w: reservation %s", entity.ErrNotFound, id)
		}
		return nil, fmt.Errorf("reservation lookup failed: %w", err)
	}

	if reservation.UserID != userID {
		return nil, fmt.Errorf("%w: reservation %s does not belong to user %s", entity.ErrNotFound, id, userID)
	}
	if reservation.Status != entity.ReservationActive {
		return nil, fmt.Errorf("%w: reservation %s is already cancelled", entity.ErrConflict, id)
	}

	cancelledAt := s.now()
	reservation.Status = entity.ReservationCancelled
	reservation.CancelledAt = &cancelledAt

	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to store cancellation: %w", err)
	}

	s.logger.Info("Reservation cancelled", "id", id, "userId", userID)
	return reservation, nil
}

// UserReservations lists all of one user's reservations.
func (s *Reservations) UserReservations(ctx context.Context, userID string) ([]entity.Reservation, error) {
	return s.reservationRepo.ByUser(ctx, userID)
}

// ForDate lists a facility's active reservations on one date.
func (s *Reservations) ForDate(ctx context.Context, facilityID int, date string) ([]entity.Reservation, error) {
	return s.reservationRepo.ActiveForDate(ctx, facilityID, date)
}

// Stats summarizes the reservation store.
func (s *Reservations) Stats(ctx context.Context) (*entity.ReservationStats, error) {
	all, err := s.reservationRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}

	stats := &entity.ReservationStats{
		Total:       len(all),
		PerFacility: make(map[int]int),
	}
	for _, r := range all {
		switch r.Status {
		case entity.ReservationActive:
			stats.Active++
			stats.PerFacility[r.FacilityID]++
		case entity.ReservationCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}
