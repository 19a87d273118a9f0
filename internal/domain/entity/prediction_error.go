package entity

import "time"

// PredictionError is one predicted-vs-actual comparison. Append-only
// log, never mutated or deleted; trend statistics are computed over it.
type PredictionError struct {
	ID         string                 `bson:"_id,omitempty"`
	Timestamp  time.Time              `bson:"timestamp"`
	FacilityID int                    `bson:"facilityId"`
	Predicted  float64                `bson:"predicted"`
	Actual     float64                `bson:"actual"`
	Error      float64                `bson:"error"` // abs(predicted - actual)
	Context    map[string]interface{} `bson:"context,omitempty"`
}
