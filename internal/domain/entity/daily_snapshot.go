package entity

import "time"

// DailySnapshot is the end-of-day state of the per-facility entry
// counters, written once by the midnight rollover before the counters
// reset.
type DailySnapshot struct {
	Date         string         `bson:"_id"` // 2006-01-02
	TotalEntries int            `bson:"totalEntries"`
	PerFacility  map[string]int `bson:"perFacility"` // facility id as string key for bson
	Temperature  float64        `bson:"temperature"`
	Rain         int            `bson:"rain"`
	Weekend      int            `bson:"weekend"`
	Holiday      int            `bson:"holiday"`
	CreatedAt    time.Time      `bson:"createdAt"`
}
