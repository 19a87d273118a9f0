// internal/domain/entity/occupancy_record.go
package entity

import "time"

// OccupancyRecord is one hour bucket of observed occupancy for a
// facility. Derived from raw scans, append-only. OccupancyRate is
// 100 * peak concurrent visitors / capacity and is deliberately not
// clamped above 100: missing exit scans can leave the running counter
// high, and that overshoot is kept as a raw signal rather than being
// silently corrected.
type OccupancyRecord struct {
	ID               string    `bson:"_id,omitempty"`
	Timestamp        time.Time `bson:"timestamp"` // truncated to the hour
	FacilityID       int       `bson:"facilityId"`
	Hour             int       `bson:"hour"`
	Day              int       `bson:"day"` // 1-7, Monday = 1
	Weekend          int       `bson:"weekend"`
	Holiday          int       `bson:"holiday"`
	EventFlag        int       `bson:"eventFlag"`
	ExamWeek         int       `bson:"examWeek"`
	ReservationCount int       `bson:"reservationCount"`
	Temperature      float64   `bson:"temperature"`
	Rain             int       `bson:"rain"`
	OccupancyRate    float64   `bson:"occupancyRate"`
	CreatedAt        time.Time `bson:"createdAt"`
}
