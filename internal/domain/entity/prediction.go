package entity

// Prediction is a live occupancy estimate from the model service.
type Prediction struct {
	FacilityID    int     `json:"facilityId"`
	FacilityName  string  `json:"facilityName"`
	OccupancyRate float64 `json:"occupancyRate"` // percent, 0-100
	Temperature   float64 `json:"temperature"`
}

// Weather is the current outdoor conditions used as a model feature.
type Weather struct {
	Temperature float64 `json:"temperature"`
	Rain        int     `json:"rain"` // 0 or 1
}
