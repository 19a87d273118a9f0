package entity

import "time"

// Scan actions produced by the QR subsystem.
const (
	ActionEnter = "enter"
	ActionExit  = "exit"
)

// ScanEvent is a single raw entry/exit scan. Produced by the QR
// scanning subsystem, consumed once by the aggregator, never mutated.
type ScanEvent struct {
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
	FacilityID int       `bson:"facilityId" json:"facilityId"`
	Action     string    `bson:"action" json:"action"`
	UserID     string    `bson:"userId" json:"userId"`
}
