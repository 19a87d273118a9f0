// internal/domain/entity/ranking.go
package entity

// RankingFactors holds the normalized per-facility scoring inputs.
// Each is in [0, 1] where lower is better. Ephemeral, computed per
// request and never persisted.
type RankingFactors struct {
	Occupancy      float64 `json:"occupancy"`
	Distance       float64 `json:"distance"`
	TypePreference float64 `json:"typePreference"`
	Event          float64 `json:"event"`
	Satisfaction   float64 `json:"satisfaction"`
}

// RankedFacility is one entry of a ranking result, best first.
type RankedFacility struct {
	Facility   Facility       `json:"facility"`
	Prediction Prediction     `json:"prediction"`
	Factors    RankingFactors `json:"factors"`
	TotalScore float64        `json:"totalScore"`
	RankReason string         `json:"rankReason"`
}

// Advisory levels for load balancing output.
const (
	AdvisoryWarning = "warning"
	AdvisoryInfo    = "info"
)

// Advisory is a load-balancing recommendation for municipal staff.
type Advisory struct {
	Type          string  `json:"type"`
	FacilityID    int     `json:"facilityId"`
	FacilityName  string  `json:"facilityName"`
	OccupancyRate float64 `json:"occupancyRate"`
	Message       string  `json:"message"`
	Action        string  `json:"action"`
}
