package entity

import "time"

// Event is a scheduled happening at a facility. Manually curated
// catalog; ImpactRatio is the estimated proportional occupancy
// increase the event causes, in [0, 1].
type Event struct {
	ID           uint
	Title        string
	Description  string
	Date         string // 2006-01-02
	Time         string // 15:04
	Venue        string
	FacilityID   int
	ImpactRatio  float64
	Participants int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
