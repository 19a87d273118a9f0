package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"occupancy-service/internal/domain/entity"
)

func scanAt(t *testing.T, value string, facilityID int, action string) entity.ScanEvent {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.Local)
	if err != nil {
		t.Fatalf("bad fixture timestamp %q: %v", value, err)
	}
	return entity.ScanEvent{Timestamp: ts, FacilityID: facilityID, Action: action, UserID: "u1"}
}

func TestParseBatch(t *testing.T) {
	raw := []RawScan{
		{Timestamp: "2026-03-02T10:00:00+03:00", FacilityID: 1, Action: "enter", UserID: "u1"},
		{Timestamp: "2026-03-02T10:15:00", FacilityID: 1, Action: "exit", UserID: "u1"},
	}

	events, err := ParseBatch(raw)
	if err != nil {
		t.Fatalf("ParseBatch: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[1].Timestamp.Hour() != 10 || events[1].Timestamp.Minute() != 15 {
		t.Errorf("naive timestamp parsed as %v", events[1].Timestamp)
	}
}

func TestParseBatchFailsWholeBatch(t *testing.T) {
	raw := []RawScan{
		{Timestamp: "2026-03-02T10:00:00", FacilityID: 1, Action: "enter"},
		{Timestamp: "not-a-time", FacilityID: 1, Action: "exit"},
	}

	events, err := ParseBatch(raw)
	if events != nil {
		t.Fatalf("expected no events on parse failure, got %d", len(events))
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Index != 1 {
		t.Errorf("ParseError.Index = %d, want 1", parseErr.Index)
	}
}

func TestBucketPeaks(t *testing.T) {
	events := []entity.ScanEvent{
		scanAt(t, "2026-03-02T10:00:00", 1, entity.ActionEnter),
		scanAt(t, "2026-03-02T10:15:00", 1, entity.ActionEnter),
		scanAt(t, "2026-03-02T10:30:00", 1, entity.ActionEnter),
		scanAt(t, "2026-03-02T10:45:00", 1, entity.ActionExit),
		scanAt(t, "2026-03-02T11:00:00", 1, entity.ActionExit),
		scanAt(t, "2026-03-02T11:10:00", 1, entity.ActionExit),
	}

	peaks := bucketPeaks(events)
	if len(peaks) != 2 {
		t.Fatalf("got %d buckets, want 2", len(peaks))
	}
	if peaks[0].Peak != 3 {
		t.Errorf("hour 10 peak = %d, want 3 (peak, not the closing counter value)", peaks[0].Peak)
	}
	if peaks[1].Peak != 1 {
		t.Errorf("hour 11 peak = %d, want 1", peaks[1].Peak)
	}
	if peaks[0].Bucket.Hour() != 10 || peaks[1].Bucket.Hour() != 11 {
		t.Errorf("bucket hours = %d, %d", peaks[0].Bucket.Hour(), peaks[1].Bucket.Hour())
	}
}

func TestBucketPeaksCounterNeverNegative(t *testing.T) {
	events := []entity.ScanEvent{
		scanAt(t, "2026-03-02T09:00:00", 1, entity.ActionExit),
		scanAt(t, "2026-03-02T09:05:00", 1, entity.ActionExit),
		scanAt(t, "2026-03-02T09:10:00", 1, entity.ActionEnter),
	}

	peaks := bucketPeaks(events)
	if len(peaks) != 1 {
		t.Fatalf("got %d buckets, want 1", len(peaks))
	}
	if peaks[0].Peak != 1 {
		t.Errorf("peak = %d, want 1 (unmatched exits clamp at zero)", peaks[0].Peak)
	}
}

func TestBucketPeaksUnsortedInput(t *testing.T) {
	events := []entity.ScanEvent{
		scanAt(t, "2026-03-02T10:30:00", 1, entity.ActionExit),
		scanAt(t, "2026-03-02T10:00:00", 1, entity.ActionEnter),
		scanAt(t, "2026-03-02T10:10:00", 1, entity.ActionEnter),
	}

	peaks := bucketPeaks(events)
	if peaks[0].Peak != 2 {
		t.Errorf("peak = %d, want 2 after replaying in timestamp order", peaks[0].Peak)
	}
}

func TestBucketPeaksSkipsEmptyHours(t *testing.T) {
	events := []entity.ScanEvent{
		scanAt(t, "2026-03-02T08:00:00", 1, entity.ActionEnter),
		scanAt(t, "2026-03-02T14:00:00", 1, entity.ActionExit),
	}

	peaks := bucketPeaks(events)
	if len(peaks) != 2 {
		t.Fatalf("got %d buckets, want 2 (hours without scans produce no bucket)", len(peaks))
	}
}

func TestProcessBatch(t *testing.T) {
	facilityRepo := &fakeFacilityRepo{facilities: map[int]entity.Facility{
		1: {ID: 1, Name: "Sports Hall", Type: "sports", Capacity: 100},
	}}
	occupancyRepo := &fakeOccupancyRepo{}
	weather := &fakeWeather{weather: entity.Weather{Temperature: 21.5, Rain: 1}}
	aggregator := NewAggregator(facilityRepo, occupancyRepo, weather, nopLogger{}, testMetrics)

	events := []entity.ScanEvent{
		scanAt(t, "2026-03-02T10:00:00", 1, entity.ActionEnter),
		scanAt(t, "2026-03-02T10:15:00", 1, entity.ActionEnter),
		scanAt(t, "2026-03-02T10:30:00", 1, entity.ActionEnter),
		scanAt(t, "2026-03-02T10:45:00", 1, entity.ActionExit),
		scanAt(t, "2026-03-02T11:00:00", 1, entity.ActionExit),
		scanAt(t, "2026-03-02T11:10:00", 1, entity.ActionExit),
		scanAt(t, "2026-03-02T10:05:00", 99, entity.ActionEnter), // not in the registry
	}

	result, err := aggregator.ProcessBatch(context.Background(), events)
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if result.EventsProcessed != 6 {
		t.Errorf("EventsProcessed = %d, want 6", result.EventsProcessed)
	}
	if result.EventsSkipped != 1 {
		t.Errorf("EventsSkipped = %d, want 1", result.EventsSkipped)
	}
	if result.RecordsAppended != 2 {
		t.Fatalf("RecordsAppended = %d, want 2", result.RecordsAppended)
	}

	first := occupancyRepo.records[0]
	if first.OccupancyRate != 3.0 {
		t.Errorf("hour 10 occupancy rate = %v, want 3.0", first.OccupancyRate)
	}
	if first.Hour != 10 || first.Day != 1 || first.Weekend != 0 {
		t.Errorf("hour 10 features = (hour %d, day %d, weekend %d), want (10, 1, 0)", first.Hour, first.Day, first.Weekend)
	}
	if first.Temperature != 21.5 || first.Rain != 1 {
		t.Errorf("weather features = (%v, %d)", first.Temperature, first.Rain)
	}
	if first.ReservationCount != 3 {
		t.Errorf("ReservationCount = %d, want peak 3", first.ReservationCount)
	}

	second := occupancyRepo.records[1]
	if second.OccupancyRate != 1.0 || second.Hour != 11 {
		t.Errorf("hour 11 record = (hour %d, rate %v), want (11, 1.0)", second.Hour, second.OccupancyRate)
	}
}

func TestProcessBatchRateNotClamped(t *testing.T) {
	facilityRepo := &fakeFacilityRepo{facilities: map[int]entity.Facility{
		2: {ID: 2, Name: "Tiny Room", Type: "library", Capacity: 2},
	}}
	occupancyRepo := &fakeOccupancyRepo{}
	aggregator := NewAggregator(facilityRepo, occupancyRepo, &fakeWeather{}, nopLogger{}, testMetrics)

	events := []entity.ScanEvent{
		scanAt(t, "2026-03-02T10:00:00", 2, entity.ActionEnter),
		scanAt(t, "2026-03-02T10:05:00", 2, entity.ActionEnter),
		scanAt(t, "2026-03-02T10:10:00", 2, entity.ActionEnter),
	}

	if _, err := aggregator.ProcessBatch(context.Background(), events); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if got := occupancyRepo.records[0].OccupancyRate; got != 150.0 {
		t.Errorf("occupancy rate = %v, want 150.0 (overshoot stays visible)", got)
	}
}

func TestHourlyOccupancy(t *testing.T) {
	facilityRepo := &fakeFacilityRepo{facilities: map[int]entity.Facility{
		1: {ID: 1, Name: "Sports Hall", Type: "sports", Capacity: 100},
	}}
	occupancyRepo := &fakeOccupancyRepo{}
	aggregator := NewAggregator(facilityRepo, occupancyRepo, &fakeWeather{}, nopLogger{}, testMetrics)

	if _, err := aggregator.HourlyOccupancy(context.Background(), 1, "2026-03-02"); !errors.Is(err, entity.ErrNoData) {
		t.Fatalf("expected ErrNoData on empty history, got %v", err)
	}

	events := []entity.ScanEvent{
		scanAt(t, "2026-03-02T10:00:00", 1, entity.ActionEnter),
		scanAt(t, "2026-03-02T12:00:00", 1, entity.ActionEnter),
	}
	if _, err := aggregator.ProcessBatch(context.Background(), events); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	hourly, err := aggregator.HourlyOccupancy(context.Background(), 1, "2026-03-02")
	if err != nil {
		t.Fatalf("HourlyOccupancy: %v", err)
	}
	if len(hourly) != 2 {
		t.Fatalf("got %d hours, want 2", len(hourly))
	}
	if math.Abs(hourly[10]-1.0) > 1e-9 || math.Abs(hourly[12]-2.0) > 1e-9 {
		t.Errorf("hourly = %v, want {10: 1.0, 12: 2.0}", hourly)
	}
}

func TestIsoWeekday(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2026-03-02", 1}, // Monday
		{"2026-03-06", 5}, // Friday
		{"2026-03-07", 6}, // Saturday
		{"2026-03-08", 7}, // Sunday
	}
	for _, tt := range tests {
		day, err := time.ParseInLocation("2006-01-02", tt.date, time.Local)
		if err != nil {
			t.Fatalf("bad fixture date %q: %v", tt.date, err)
		}
		if got := isoWeekday(day); got != tt.want {
			t.Errorf("isoWeekday(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestHolidayFlag(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2026-01-01", 1},
		{"2026-04-23", 1},
		{"2026-08-30", 1},
		{"2026-10-29", 1},
		{"2026-03-02", 0},
	}
	for _, tt := range tests {
		day, err := time.ParseInLocation("2006-01-02", tt.date, time.Local)
		if err != nil {
			t.Fatalf("bad fixture date %q: %v", tt.date, err)
		}
		if got := holidayFlag(day); got != tt.want {
			t.Errorf("holidayFlag(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}
