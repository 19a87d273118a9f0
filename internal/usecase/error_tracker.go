package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"
	"occupancy-service/pkg/logger"
	"occupancy-service/pkg/metrics"

	"github.com/montanaflynn/stats"
)

// reportSampleSize bounds the lifetime statistics to the most recent
// error records.
const reportSampleSize = 1000

// compareRetrainEvery triggers a model retraining run after every Nth
// recorded comparison on this feeding path.
const compareRetrainEvery = 50

// ErrorTracker compares model predictions against observed ground
// truth and produces accuracy statistics and recommendations. It is a
// read-mostly diagnostic surface: report generation wraps every
// failure into an error result instead of crashing the caller.
type ErrorTracker struct {
	errorRepo     repository.PredictionErrorRepository
	occupancyRepo repository.OccupancyRepository
	predictor     repository.Predictor
	logger        logger.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewErrorTracker creates a new error tracker
func NewErrorTracker(
	errorRepo repository.PredictionErrorRepository,
	occupancyRepo repository.OccupancyRepository,
	predictor repository.Predictor,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *ErrorTracker {
	return &ErrorTracker{
		errorRepo:     errorRepo,
		occupancyRepo: occupancyRepo,
		predictor:     predictor,
		logger:        logger,
		metrics:       metrics,
		now:           time.Now,
	}
}

// RecordComparison appends one predicted-vs-actual comparison to the
// error log and returns the record. Values are kept at one decimal,
// matching the historical log format.
func (t *ErrorTracker) RecordComparison(ctx context.Context, facilityID int, predicted, actual float64, contextInfo map[string]interface{}) (*entity.PredictionError, error) {
	record := &entity.PredictionError{
		Timestamp:  t.now(),
		FacilityID: facilityID,
		Predicted:  round1(predicted),
		Actual:     round1(actual),
		Error:      round1(math.Abs(predicted - actual)),
		Context:    contextInfo,
	}

	if err := t.errorRepo.Append(ctx, record); err != nil {
		t.metrics.ErrorsCount.WithLabelValues("record_comparison").Inc()
		return nil, fmt.Errorf("failed to append error record: %w", err)
	}

	t.metrics.ComparisonsRecorded.Inc()
	t.logger.Debug("Comparison recorded",
		"facilityId", facilityID,
		"predicted", record.Predicted,
		"actual", record.Actual,
		"error", record.Error)

	t.maybeRetrain(ctx)
	return record, nil
}

// CompareWindow compares all ground truth in a window against fresh
// predictions. date selects one calendar date; nil means the last 24
// hours. A facility whose prediction fails is skipped and counted,
// never aborting the batch. Returns entity.ErrNoData when the window
// holds no ground truth.
func (t *ErrorTracker) CompareWindow(ctx context.Context, date *string) (*entity.ComparisonResult, error) {
	var (
		groundTruth []entity.OccupancyRecord
		window      string
		err         error
	)
	if date != nil {
		window = *date
		groundTruth, err = t.occupancyRepo.FindByDate(ctx, *date)
	} else {
		window = "last_24h"
		groundTruth, err = t.occupancyRepo.FindSince(ctx, t.now().Add(-24*time.Hour))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ground truth: %w", err)
	}
	if len(groundTruth) == 0 {
		return nil, entity.ErrNoData
	}

	result := &entity.ComparisonResult{Window: window}
	for _, truth := range groundTruth {
		prediction, err := t.predictor.Predict(ctx, truth.FacilityID, 10, 0)
		if err != nil {
			t.logger.Warn("Prediction failed during comparison",
				"facilityId", truth.FacilityID, "error", err)
			result.Skipped++
			continue
		}

		record, err := t.RecordComparison(ctx, truth.FacilityID, prediction.OccupancyRate, truth.OccupancyRate, map[string]interface{}{
			"hour":      truth.Hour,
			"timestamp": truth.Timestamp,
		})
		if err != nil {
			// one bad comparison must not abort the whole batch
			t.logger.Error("Failed to record comparison", "facilityId", truth.FacilityID, "error", err)
			result.Skipped++
			continue
		}

		result.Compared++
		result.Comparisons = append(result.Comparisons, *record)
	}

	if result.Compared > 0 {
		summary := summarize(result.Comparisons)
		result.Summary = &summary
	}
	return result, nil
}

// Trends returns per-date mean absolute errors over the last N days.
// entity.ErrNoData when the window is empty.
func (t *ErrorTracker) Trends(ctx context.Context, days int) (*entity.TrendResult, error) {
	cutoff := t.now().AddDate(0, 0, -days)
	records, err := t.errorRepo.FindSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load error log: %w", err)
	}
	if len(records) == 0 {
		return nil, entity.ErrNoData
	}

	daily := make(map[string][]float64)
	all := make([]float64, 0, len(records))
	for _, record := range records {
		date := record.Timestamp.Format("2006-01-02")
		daily[date] = append(daily[date], record.Error)
		all = append(all, record.Error)
	}

	averages := make(map[string]float64, len(daily))
	for date, errs := range daily {
		mean, _ := stats.Mean(errs)
		averages[date] = round2(mean)
	}
	overall, _ := stats.Mean(all)

	return &entity.TrendResult{
		PeriodDays:    days,
		TotalErrors:   len(records),
		DailyAverages: averages,
		OverallMean:   round2(overall),
	}, nil
}

// GenerateReport combines 30-day trends with lifetime statistics over
// the most recent records and persists the result as the latest-only
// snapshot. All failures come back as wrapped errors; this method
// never panics on bad data.
func (t *ErrorTracker) GenerateReport(ctx context.Context) (*entity.PerformanceReport, error) {
	trend, err := t.Trends(ctx, 30)
	if err != nil {
		return nil, fmt.Errorf("report generation: %w", err)
	}

	recent, err := t.errorRepo.FindRecent(ctx, reportSampleSize)
	if err != nil {
		return nil, fmt.Errorf("report generation: %w", err)
	}
	total, err := t.errorRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("report generation: %w", err)
	}

	values := make([]float64, 0, len(recent))
	for _, record := range recent {
		values = append(values, record.Error)
	}

	report := &entity.PerformanceReport{
		GeneratedAt:      t.now(),
		TotalPredictions: int(total),
		Trend30Days:      trend,
		Assessment:       assessAccuracy(trend.OverallMean),
		Overall:          overallStats(values),
		Recommendations:  recommendations(trend.OverallMean),
	}

	if err := t.errorRepo.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("report generation: failed to persist snapshot: %w", err)
	}
	return report, nil
}

// maybeRetrain kicks off model retraining after every Nth comparison.
// It runs detached: a training failure is logged and counted but must
// never fail the comparison that triggered it.
func (t *ErrorTracker) maybeRetrain(ctx context.Context) {
	count, err := t.errorRepo.Count(ctx)
	if err != nil || count == 0 || count%compareRetrainEvery != 0 {
		return
	}

	t.logger.Info("Comparison count reached retrain threshold", "count", count)
	go func() {
		retrainCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := t.predictor.Retrain(retrainCtx); err != nil {
			t.metrics.ErrorsCount.WithLabelValues("retrain").Inc()
			t.logger.Error("Retraining failed", "error", err)
			return
		}
		t.metrics.RetrainsTriggered.Inc()
	}()
}

// summarize computes window statistics over comparison records.
func summarize(comparisons []entity.PredictionError) entity.ComparisonSummary {
	predicted := make([]float64, len(comparisons))
	actual := make([]float64, len(comparisons))
	for i, c := range comparisons {
		predicted[i] = c.Predicted
		actual[i] = c.Actual
	}

	mae := meanAbsoluteError(predicted, actual)
	return entity.ComparisonSummary{
		MAE:      round2(mae),
		RMSE:     round2(rootMeanSquaredError(predicted, actual)),
		R2:       round4(rSquared(predicted, actual)),
		Accuracy: round1((1 - mae/100) * 100),
	}
}

func meanAbsoluteError(predicted, actual []float64) float64 {
	sum := 0.0
	for i := range predicted {
		sum += math.Abs(predicted[i] - actual[i])
	}
	return sum / float64(len(predicted))
}

func rootMeanSquaredError(predicted, actual []float64) float64 {
	sum := 0.0
	for i := range predicted {
		d := predicted[i] - actual[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(predicted)))
}

// rSquared is the coefficient of determination, 1 - SSres/SStot.
// Zero when the actual values have no variance.
func rSquared(predicted, actual []float64) float64 {
	mean, _ := stats.Mean(actual)

	ssRes, ssTot := 0.0, 0.0
	for i := range actual {
		ssRes += (actual[i] - predicted[i]) * (actual[i] - predicted[i])
		ssTot += (actual[i] - mean) * (actual[i] - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func overallStats(values []float64) entity.OverallStats {
	if len(values) == 0 {
		return entity.OverallStats{}
	}
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	max, _ := stats.Max(values)
	min, _ := stats.Min(values)
	return entity.OverallStats{
		Mean:   round2(mean),
		Median: round2(median),
		Max:    round2(max),
		Min:    round2(min),
	}
}

// assessAccuracy maps a 30-day mean absolute error to a discrete tier.
func assessAccuracy(avgError float64) string {
	switch {
	case avgError <= 5:
		return "very high (excellent)"
	case avgError <= 10:
		return "high (very good)"
	case avgError <= 15:
		return "medium-high (good)"
	case avgError <= 20:
		return "medium (acceptable)"
	default:
		return "low (needs improvement)"
	}
}

// recommendations returns the improvement list for an error tier.
func recommendations(avgError float64) []string {
	switch {
	case avgError > 20:
		return []string{
			"Collect more real visitor data",
			"Optimize model hyperparameters",
			"Add extra features (weather, events, etc.)",
		}
	case avgError > 15:
		return []string{
			"Increase the real-time data flow",
			"Improve feature engineering",
			"Try model ensemble methods",
		}
	case avgError > 10:
		return []string{
			"Maintain current data quality",
			"Keep up the regular model updates",
			"Filter outlier records",
		}
	default:
		return []string{"Model performance is very good, keep the current strategy"}
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
