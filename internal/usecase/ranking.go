package usecase

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"
	"occupancy-service/pkg/logger"
	"occupancy-service/pkg/metrics"
)

// Advisory thresholds for load balancing, in occupancy percent.
const (
	highOccupancyThreshold = 80.0
	lowOccupancyThreshold  = 40.0
	maxAdvisoriesPerLevel  = 3
)

const earthRadiusKm = 6371.0

// distanceScaleKm caps the distance factor: anything at or beyond
// this distance scores 1.0.
const distanceScaleKm = 10.0

// RankingWeights weight the normalized scoring factors. They must sum
// to 1.0.
type RankingWeights struct {
	Occupancy      float64
	Distance       float64
	TypePreference float64
	Event          float64
	Satisfaction   float64
}

// DefaultRankingWeights returns the shipped weight set.
func DefaultRankingWeights() RankingWeights {
	return RankingWeights{
		Occupancy:      0.40,
		Distance:       0.20,
		TypePreference: 0.15,
		Event:          0.15,
		Satisfaction:   0.10,
	}
}

// LatLon is a WGS84 coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RankRequest describes one citizen's ranking query.
type RankRequest struct {
	UserLocation   *LatLon   `json:"userLocation,omitempty"`
	PreferredTypes []string  `json:"preferredTypes,omitempty"`
	At             time.Time `json:"-"` // zero means now
	TopN           int       `json:"topN"`
}

// Ranking scores and orders facilities for citizens using live
// predictions plus contextual factors. Lower score means more
// recommended.
type Ranking struct {
	facilityRepo repository.FacilityRepository
	eventRepo    repository.EventRepository
	predictor    repository.Predictor
	weights      RankingWeights
	reference    LatLon
	logger       logger.Logger
	metrics      *metrics.Metrics
	now          func() time.Time

	// Placeholder signals for data we do not collect yet. Distance
	// falls back to a random value when no user location is supplied,
	// and satisfaction has no real source at all. Both are injectable
	// so tests can pin them; replacing them with constants would
	// silently bias the ranking, so keep the randomness until real
	// geodata and survey scores exist.
	unknownDistance func() float64 // [0.1, 0.9]
	satisfaction    func() float64 // [0.3, 0.9]
}

// NewRanking creates a new ranking engine
func NewRanking(
	facilityRepo repository.FacilityRepository,
	eventRepo repository.EventRepository,
	predictor repository.Predictor,
	weights RankingWeights,
	reference LatLon,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *Ranking {
	return &Ranking{
		facilityRepo:    facilityRepo,
		eventRepo:       eventRepo,
		predictor:       predictor,
		weights:         weights,
		reference:       reference,
		logger:          logger,
		metrics:         metrics,
		now:             time.Now,
		unknownDistance: func() float64 { return 0.1 + rand.Float64()*0.8 },
		satisfaction:    func() float64 { return 0.3 + rand.Float64()*0.6 },
	}
}

// Rank returns the top N facilities ordered by ascending total score.
// Facilities whose live prediction cannot be obtained are logged and
// excluded, not scored with a default.
func (r *Ranking) Rank(ctx context.Context, req RankRequest) ([]entity.RankedFacility, error) {
	started := time.Now()

	facilities, err := r.facilityRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load facility registry: %w", err)
	}

	at := req.At
	if at.IsZero() {
		at = r.now()
	}
	date := at.Format("2006-01-02")

	ranked := make([]entity.RankedFacility, 0, len(facilities))
	for _, facility := range facilities {
		prediction, err := r.predictor.Predict(ctx, facility.ID, 10, 0)
		if err != nil {
			r.logger.Warn("Excluding facility from ranking, prediction unavailable",
				"facilityId", facility.ID, "error", err)
			continue
		}

		factors := r.computeFactors(ctx, facility, prediction.OccupancyRate, req, date)
		ranked = append(ranked, entity.RankedFacility{
			Facility:   facility,
			Prediction: *prediction,
			Factors:    factors,
			TotalScore: r.totalScore(factors),
			RankReason: rankReason(factors),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore < ranked[j].TotalScore
	})

	topN := req.TopN
	if topN <= 0 {
		topN = 5
	}
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	r.metrics.RankingTime.Observe(time.Since(started).Seconds())
	return ranked, nil
}

// computeFactors normalizes each ranking input to [0, 1], lower is
// better.
func (r *Ranking) computeFactors(ctx context.Context, facility entity.Facility, occupancyRate float64, req RankRequest, date string) entity.RankingFactors {
	factors := entity.RankingFactors{
		Occupancy:    occupancyRate / 100.0,
		Satisfaction: r.satisfaction(),
	}

	if req.UserLocation != nil {
		km := haversineKm(*req.UserLocation, r.reference)
		factors.Distance = math.Min(km/distanceScaleKm, 1.0)
	} else {
		factors.Distance = r.unknownDistance()
	}

	factors.TypePreference = 0.5 // neutral
	for _, preferred := range req.PreferredTypes {
		if strings.EqualFold(preferred, facility.Type) {
			factors.TypePreference = 0.0
			break
		}
	}

	impact, err := r.eventRepo.ActiveImpact(ctx, facility.ID, date)
	if err != nil {
		// missing event data degrades to "no event", not to a failure
		r.logger.Warn("Event impact lookup failed", "facilityId", facility.ID, "error", err)
		impact = 0
	}
	factors.Event = impact

	return factors
}

func (r *Ranking) totalScore(f entity.RankingFactors) float64 {
	return f.Occupancy*r.weights.Occupancy +
		f.Distance*r.weights.Distance +
		f.TypePreference*r.weights.TypePreference +
		f.Event*r.weights.Event +
		f.Satisfaction*r.weights.Satisfaction
}

// rankReason explains a ranking entry from its extreme factors.
func rankReason(f entity.RankingFactors) string {
	var reasons []string

	if f.Occupancy < 0.3 {
		reasons = append(reasons, "low occupancy")
	} else if f.Occupancy > 0.8 {
		reasons = append(reasons, "high occupancy")
	}

	if f.Distance < 0.3 {
		reasons = append(reasons, "nearby")
	} else if f.Distance > 0.7 {
		reasons = append(reasons, "far away")
	}

	if f.Event > 0.2 {
		reasons = append(reasons, "event impact")
	}

	if f.Satisfaction > 0.8 {
		reasons = append(reasons, "high satisfaction score")
	}

	if len(reasons) == 0 {
		return "overall assessment"
	}
	return strings.Join(reasons, ", ")
}

// LoadBalancing returns demand-steering advisories for municipal
// staff: warnings for facilities predicted above 80% occupancy and
// promotion hints for those below 40%, at most three of each, ordered
// by occupancy descending.
func (r *Ranking) LoadBalancing(ctx context.Context) ([]entity.Advisory, error) {
	facilities, err := r.facilityRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load facility registry: %w", err)
	}

	type usage struct {
		facility entity.Facility
		rate     float64
	}
	var usages []usage
	for _, facility := range facilities {
		prediction, err := r.predictor.Predict(ctx, facility.ID, 10, 0)
		if err != nil {
			r.logger.Warn("Excluding facility from load balancing, prediction unavailable",
				"facilityId", facility.ID, "error", err)
			continue
		}
		usages = append(usages, usage{facility: facility, rate: prediction.OccupancyRate})
	}

	sort.SliceStable(usages, func(i, j int) bool { return usages[i].rate > usages[j].rate })

	var advisories []entity.Advisory
	high := 0
	for _, u := range usages {
		if u.rate <= highOccupancyThreshold || high >= maxAdvisoriesPerLevel {
			continue
		}
		high++
		advisories = append(advisories, entity.Advisory{
			Type:          entity.AdvisoryWarning,
			FacilityID:    u.facility.ID,
			FacilityName:  u.facility.Name,
			OccupancyRate: u.rate,
			Message:       fmt.Sprintf("High occupancy (%.0f%%) - redirecting demand recommended", u.rate),
			Action:        "Enable alternative facility suggestions",
		})
	}

	low := 0
	for _, u := range usages {
		if u.rate >= lowOccupancyThreshold || low >= maxAdvisoriesPerLevel {
			continue
		}
		low++
		advisories = append(advisories, entity.Advisory{
			Type:          entity.AdvisoryInfo,
			FacilityID:    u.facility.ID,
			FacilityName:  u.facility.Name,
			OccupancyRate: u.rate,
			Message:       fmt.Sprintf("Low occupancy (%.0f%%) - promotion recommended", u.rate),
			Action:        "Organize an event or campaign",
		})
	}

	return advisories, nil
}

// haversineKm is the great-circle distance between two coordinates.
func haversineKm(a, b LatLon) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
