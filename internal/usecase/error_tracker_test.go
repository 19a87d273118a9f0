package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"occupancy-service/internal/domain/entity"
)

func fixedTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.Local)
	if err != nil {
		t.Fatalf("bad fixture timestamp %q: %v", value, err)
	}
	return ts
}

func TestSummarize(t *testing.T) {
	comparisons := []entity.PredictionError{
		{Predicted: 60, Actual: 65},
		{Predicted: 70, Actual: 70},
		{Predicted: 80, Actual: 75},
	}

	summary := summarize(comparisons)
	if summary.MAE != 3.33 {
		t.Errorf("MAE = %v, want 3.33", summary.MAE)
	}
	if summary.RMSE != 4.08 {
		t.Errorf("RMSE = %v, want 4.08", summary.RMSE)
	}
	if summary.R2 != 0 {
		t.Errorf("R2 = %v, want 0", summary.R2)
	}
	if summary.Accuracy != 96.7 {
		t.Errorf("Accuracy = %v, want 96.7", summary.Accuracy)
	}
}

func TestRSquared(t *testing.T) {
	perfect := rSquared([]float64{10, 20, 30}, []float64{10, 20, 30})
	if perfect != 1 {
		t.Errorf("perfect prediction R2 = %v, want 1", perfect)
	}

	noVariance := rSquared([]float64{40, 50}, []float64{60, 60})
	if noVariance != 0 {
		t.Errorf("zero-variance R2 = %v, want 0", noVariance)
	}

	fixture := rSquared([]float64{60, 70, 80}, []float64{65, 70, 75})
	if fixture != 0 {
		t.Errorf("fixture R2 = %v, want 0 (SSres equals SStot)", fixture)
	}
}

func TestRecordComparisonRoundsValues(t *testing.T) {
	errorRepo := &fakeErrorRepo{}
	tracker := NewErrorTracker(errorRepo, &fakeOccupancyRepo{}, &fakePredictor{}, nopLogger{}, testMetrics)

	record, err := tracker.RecordComparison(context.Background(), 1, 55.5555, 50.1111, nil)
	if err != nil {
		t.Fatalf("RecordComparison: %v", err)
	}
	if record.Predicted != 55.6 || record.Actual != 50.1 {
		t.Errorf("rounded values = (%v, %v), want (55.6, 50.1)", record.Predicted, record.Actual)
	}
	if record.Error != 5.4 {
		t.Errorf("error = %v, want 5.4", record.Error)
	}
	if len(errorRepo.records) != 1 {
		t.Fatalf("appended %d records, want 1", len(errorRepo.records))
	}
}

func TestCompareWindowNoData(t *testing.T) {
	tracker := NewErrorTracker(&fakeErrorRepo{}, &fakeOccupancyRepo{}, &fakePredictor{}, nopLogger{}, testMetrics)

	if _, err := tracker.CompareWindow(context.Background(), nil); !errors.Is(err, entity.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestCompareWindowSkipsFailedPredictions(t *testing.T) {
	occupancyRepo := &fakeOccupancyRepo{records: []entity.OccupancyRecord{
		{Timestamp: fixedTime(t, "2026-03-02T10:00:00"), FacilityID: 1, Hour: 10, OccupancyRate: 40},
		{Timestamp: fixedTime(t, "2026-03-02T11:00:00"), FacilityID: 2, Hour: 11, OccupancyRate: 60},
	}}
	predictor := &fakePredictor{predictFn: func(facilityID int) (*entity.Prediction, error) {
		if facilityID == 2 {
			return nil, entity.ErrModelUnavailable
		}
		return &entity.Prediction{FacilityID: facilityID, OccupancyRate: 45}, nil
	}}
	tracker := NewErrorTracker(&fakeErrorRepo{}, occupancyRepo, predictor, nopLogger{}, testMetrics)

	date := "2026-03-02"
	result, err := tracker.CompareWindow(context.Background(), &date)
	if err != nil {
		t.Fatalf("CompareWindow: %v", err)
	}
	if result.Compared != 1 || result.Skipped != 1 {
		t.Errorf("compared %d, skipped %d, want 1 and 1", result.Compared, result.Skipped)
	}
	if result.Summary == nil {
		t.Fatal("expected a summary for a non-empty comparison window")
	}
	if result.Summary.MAE != 5.0 {
		t.Errorf("MAE = %v, want 5.0", result.Summary.MAE)
	}
	if result.Window != date {
		t.Errorf("window = %q, want %q", result.Window, date)
	}
}

func TestTrendsGroupsByDate(t *testing.T) {
	now := fixedTime(t, "2026-03-05T12:00:00")
	errorRepo := &fakeErrorRepo{records: []entity.PredictionError{
		{Timestamp: fixedTime(t, "2026-03-03T10:00:00"), Error: 4},
		{Timestamp: fixedTime(t, "2026-03-03T11:00:00"), Error: 6},
		{Timestamp: fixedTime(t, "2026-03-04T10:00:00"), Error: 10},
	}}
	tracker := NewErrorTracker(errorRepo, &fakeOccupancyRepo{}, &fakePredictor{}, nopLogger{}, testMetrics)
	tracker.now = func() time.Time { return now }

	trend, err := tracker.Trends(context.Background(), 7)
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}
	if trend.TotalErrors != 3 {
		t.Errorf("TotalErrors = %d, want 3", trend.TotalErrors)
	}
	if trend.DailyAverages["2026-03-03"] != 5.0 {
		t.Errorf("daily average 2026-03-03 = %v, want 5.0", trend.DailyAverages["2026-03-03"])
	}
	if trend.DailyAverages["2026-03-04"] != 10.0 {
		t.Errorf("daily average 2026-03-04 = %v, want 10.0", trend.DailyAverages["2026-03-04"])
	}
	if trend.OverallMean != 6.67 {
		t.Errorf("OverallMean = %v, want 6.67", trend.OverallMean)
	}
}

func TestTrendsNoData(t *testing.T) {
	tracker := NewErrorTracker(&fakeErrorRepo{}, &fakeOccupancyRepo{}, &fakePredictor{}, nopLogger{}, testMetrics)

	if _, err := tracker.Trends(context.Background(), 7); !errors.Is(err, entity.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestGenerateReport(t *testing.T) {
	now := fixedTime(t, "2026-03-05T12:00:00")
	errorRepo := &fakeErrorRepo{records: []entity.PredictionError{
		{Timestamp: fixedTime(t, "2026-03-03T10:00:00"), Error: 2},
		{Timestamp: fixedTime(t, "2026-03-04T10:00:00"), Error: 4},
		{Timestamp: fixedTime(t, "2026-03-04T11:00:00"), Error: 6},
	}}
	tracker := NewErrorTracker(errorRepo, &fakeOccupancyRepo{}, &fakePredictor{}, nopLogger{}, testMetrics)
	tracker.now = func() time.Time { return now }

	report, err := tracker.GenerateReport(context.Background())
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if report.TotalPredictions != 3 {
		t.Errorf("TotalPredictions = %d, want 3", report.TotalPredictions)
	}
	if report.Assessment != "very high (excellent)" {
		t.Errorf("Assessment = %q", report.Assessment)
	}
	if report.Overall.Mean != 4.0 || report.Overall.Median != 4.0 {
		t.Errorf("Overall = %+v", report.Overall)
	}
	if report.Overall.Max != 6.0 || report.Overall.Min != 2.0 {
		t.Errorf("Overall extremes = %+v", report.Overall)
	}
	if len(report.Recommendations) != 1 {
		t.Errorf("Recommendations = %v", report.Recommendations)
	}

	// the report replaces the stored snapshot
	latest, err := errorRepo.LatestReport(context.Background())
	if err != nil {
		t.Fatalf("LatestReport: %v", err)
	}
	if latest.TotalPredictions != report.TotalPredictions {
		t.Errorf("stored snapshot differs from the returned report")
	}
}

func TestGenerateReportNoData(t *testing.T) {
	tracker := NewErrorTracker(&fakeErrorRepo{}, &fakeOccupancyRepo{}, &fakePredictor{}, nopLogger{}, testMetrics)

	if _, err := tracker.GenerateReport(context.Background()); !errors.Is(err, entity.ErrNoData) {
		t.Fatalf("expected wrapped ErrNoData, got %v", err)
	}
}

func TestAssessAccuracy(t *testing.T) {
	tests := []struct {
		avgError float64
		want     string
	}{
		{3, "very high (excellent)"},
		{5, "very high (excellent)"},
		{7, "high (very good)"},
		{12, "medium-high (good)"},
		{18, "medium (acceptable)"},
		{25, "low (needs improvement)"},
	}
	for _, tt := range tests {
		if got := assessAccuracy(tt.avgError); got != tt.want {
			t.Errorf("assessAccuracy(%v) = %q, want %q", tt.avgError, got, tt.want)
		}
	}
}

func TestRetrainTriggeredEveryNthComparison(t *testing.T) {
	errorRepo := &fakeErrorRepo{}
	predictor := &fakePredictor{}
	tracker := NewErrorTracker(errorRepo, &fakeOccupancyRepo{}, predictor, nopLogger{}, testMetrics)

	for i := 0; i < compareRetrainEvery; i++ {
		if _, err := tracker.RecordComparison(context.Background(), 1, 50, 55, nil); err != nil {
			t.Fatalf("RecordComparison %d: %v", i, err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for predictor.retrains.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("retrain was not triggered after the threshold comparison")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := predictor.retrains.Load(); got != 1 {
		t.Errorf("retrains = %d, want 1", got)
	}
}
