package entity

import "time"

// TrendResult summarizes prediction errors over a rolling window,
// grouped by calendar date.
type TrendResult struct {
	PeriodDays    int                `bson:"periodDays" json:"periodDays"`
	TotalErrors   int                `bson:"totalErrors" json:"totalErrors"`
	DailyAverages map[string]float64 `bson:"dailyAverages" json:"dailyAverages"`
	OverallMean   float64            `bson:"overallMean" json:"overallMean"`
}

// ComparisonSummary holds window-level accuracy statistics.
type ComparisonSummary struct {
	MAE      float64 `bson:"mae" json:"mae"`
	RMSE     float64 `bson:"rmse" json:"rmse"`
	R2       float64 `bson:"r2" json:"r2"`
	Accuracy float64 `bson:"accuracy" json:"accuracy"` // (1 - MAE/100) * 100
}

// ComparisonResult is the outcome of comparing a window of ground
// truth against fresh predictions.
type ComparisonResult struct {
	Window      string             `json:"window"` // date or "last_24h"
	Compared    int                `json:"compared"`
	Skipped     int                `json:"skipped"` // per-item prediction failures
	Comparisons []PredictionError  `json:"comparisons"`
	Summary     *ComparisonSummary `json:"summary,omitempty"`
}

// OverallStats are lifetime statistics over the most recent errors.
type OverallStats struct {
	Mean   float64 `bson:"mean" json:"mean"`
	Median float64 `bson:"median" json:"median"`
	Max    float64 `bson:"max" json:"max"`
	Min    float64 `bson:"min" json:"min"`
}

// PerformanceReport is the latest-only model quality snapshot.
type PerformanceReport struct {
	GeneratedAt      time.Time    `bson:"generatedAt" json:"generatedAt"`
	TotalPredictions int          `bson:"totalPredictions" json:"totalPredictions"`
	Trend30Days      *TrendResult `bson:"trend30Days" json:"trend30Days"`
	Assessment       string       `bson:"assessment" json:"assessment"`
	Overall          OverallStats `bson:"overall" json:"overall"`
	Recommendations  []string     `bson:"recommendations" json:"recommendations"`
}
