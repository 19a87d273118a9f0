// internal/domain/entity/reservation.go
package entity

import "time"

// Reservation statuses. A reservation only ever moves active ->
// cancelled; it is never hard-deleted.
const (
	ReservationActive    = "active"
	ReservationCancelled = "cancelled"
)

// Reservation is a citizen's booking of a facility time slot.
type Reservation struct {
	ID            string     `bson:"_id"`
	UserID        string     `bson:"userId"`
	FacilityID    int        `bson:"facilityId"`
	FacilityName  string     `bson:"facilityName"`
	Date          string     `bson:"date"` // 2006-01-02
	StartHour     int        `bson:"startHour"`
	DurationHours int        `bson:"durationHours"`
	PartySize     int        `bson:"partySize"`
	Status        string     `bson:"status"`
	CreatedAt     time.Time  `bson:"createdAt"`
	CancelledAt   *time.Time `bson:"cancelledAt,omitempty"`
}

// EndHour returns the exclusive end of the reserved interval.
func (r *Reservation) EndHour() int {
	return r.StartHour + r.DurationHours
}

// ReservationStats summarizes the reservation store.
type ReservationStats struct {
	Total       int
	Active      int
	Cancelled   int
	PerFacility map[int]int // active reservations per facility
}
