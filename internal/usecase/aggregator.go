package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"
	"occupancy-service/pkg/logger"
	"occupancy-service/pkg/metrics"
)

// officialHolidays is the fixed (month, day) lookup of Turkish
// national holidays.
var officialHolidays = map[[2]int]bool{
	{1, 1}:   true,
	{4, 23}:  true,
	{5, 19}:  true,
	{8, 30}:  true,
	{10, 29}: true,
	{11, 10}: true,
}

// ParseError reports a malformed raw scan. One bad timestamp fails
// the whole batch; the producer must fix the input and resubmit.
type ParseError struct {
	Index int
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("scan %d: unparseable timestamp %q: %v", e.Index, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RawScan is the wire form of a scan event as emitted by the QR
// subsystem, timestamp still unparsed.
type RawScan struct {
	Timestamp  string `json:"timestamp"`
	FacilityID int    `json:"facilityId"`
	Action     string `json:"action"`
	UserID     string `json:"userId"`
}

// BatchResult reports what happened to each item of an aggregation
// batch, so partial failures are visible instead of silently skipped.
type BatchResult struct {
	EventsProcessed int `json:"eventsProcessed"`
	EventsSkipped   int `json:"eventsSkipped"` // unknown facility
	RecordsAppended int `json:"recordsAppended"`
}

// Aggregator turns batches of raw entry/exit scans into hourly
// occupancy records.
type Aggregator struct {
	facilityRepo  repository.FacilityRepository
	occupancyRepo repository.OccupancyRepository
	weather       repository.WeatherProvider
	logger        logger.Logger
	metrics       *metrics.Metrics
}

// NewAggregator creates a new occupancy aggregator
func NewAggregator(
	facilityRepo repository.FacilityRepository,
	occupancyRepo repository.OccupancyRepository,
	weather repository.WeatherProvider,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *Aggregator {
	return &Aggregator{
		facilityRepo:  facilityRepo,
		occupancyRepo: occupancyRepo,
		weather:       weather,
		logger:        logger,
		metrics:       metrics,
	}
}

// ParseBatch converts raw scans into events. Any unparseable
// timestamp fails the whole batch with a ParseError.
func ParseBatch(raw []RawScan) ([]entity.ScanEvent, error) {
	events := make([]entity.ScanEvent, 0, len(raw))
	for i, scan := range raw {
		ts, err := time.ParseInLocation(time.RFC3339, scan.Timestamp, time.Local)
		if err != nil {
			// the QR subsystem historically emitted timestamps without
			// a zone designator
			ts, err = time.ParseInLocation("2006-01-02T15:04:05", scan.Timestamp, time.Local)
		}
		if err != nil {
			return nil, &ParseError{Index: i, Value: scan.Timestamp, Err: err}
		}
		events = append(events, entity.ScanEvent{
			Timestamp:  ts,
			FacilityID: scan.FacilityID,
			Action:     scan.Action,
			UserID:     scan.UserID,
		})
	}
	return events, nil
}

// ProcessBatch aggregates scan events into hourly occupancy records
// and appends them to the history. Events for facilities missing from
// the registry are skipped and counted, not errors. The append is not
// idempotent: submitting the same batch twice duplicates records.
func (a *Aggregator) ProcessBatch(ctx context.Context, events []entity.ScanEvent) (*BatchResult, error) {
	started := time.Now()
	result := &BatchResult{}

	byFacility := make(map[int][]entity.ScanEvent)
	for _, event := range events {
		byFacility[event.FacilityID] = append(byFacility[event.FacilityID], event)
	}

	weather := a.weather.Current(ctx)

	var records []entity.OccupancyRecord
	for facilityID, facilityEvents := range byFacility {
		facility, err := a.facilityRepo.GetByID(ctx, facilityID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				a.logger.Warn("Skipping scans for unknown facility", "facilityId", facilityID, "count", len(facilityEvents))
				result.EventsSkipped += len(facilityEvents)
				continue
			}
			return nil, fmt.Errorf("facility lookup failed: %w", err)
		}

		peaks := bucketPeaks(facilityEvents)
		result.EventsProcessed += len(facilityEvents)

		for _, bucket := range peaks {
			records = append(records, a.buildRecord(facility, bucket, weather))
		}
	}

	// ordered by bucket, then facility, for a stable append order
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.Before(records[j].Timestamp)
		}
		return records[i].FacilityID < records[j].FacilityID
	})

	if err := a.occupancyRepo.AppendBatch(ctx, records); err != nil {
		a.metrics.ErrorsCount.WithLabelValues("aggregate").Inc()
		return nil, fmt.Errorf("failed to append occupancy records: %w", err)
	}

	result.RecordsAppended = len(records)
	a.metrics.ScansProcessed.Add(float64(result.EventsProcessed))
	a.metrics.RecordsAggregated.Add(float64(len(records)))
	a.metrics.AggregationTime.Observe(time.Since(started).Seconds())

	a.logger.Info("Aggregated scan batch",
		"events", result.EventsProcessed,
		"skipped", result.EventsSkipped,
		"records", len(records))
	return result, nil
}

// bucketPeak pairs an hour bucket with the peak concurrency seen in it.
type bucketPeak struct {
	Bucket time.Time
	Peak   int
}

// bucketPeaks replays one facility's scans through a running
// concurrency counter and returns the per-hour peak values, buckets
// in ascending order. The sort must be stable: a simultaneous
// enter/exit pair must keep its original order or the counter
// desynchronizes. Exits never push the counter below zero - missing
// enter scans are tolerated, not errors. Hours with no scans produce
// no bucket (absence means "no change observed", not "empty").
func bucketPeaks(events []entity.ScanEvent) []bucketPeak {
	sorted := make([]entity.ScanEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	peaks := make(map[time.Time]int)
	var order []time.Time

	counter := 0
	for _, event := range sorted {
		switch event.Action {
		case entity.ActionEnter:
			counter++
		case entity.ActionExit:
			counter--
			if counter < 0 {
				counter = 0
			}
		}

		bucket := event.Timestamp.Truncate(time.Hour)
		if _, seen := peaks[bucket]; !seen {
			order = append(order, bucket)
		}
		if counter > peaks[bucket] {
			peaks[bucket] = counter
		}
	}

	result := make([]bucketPeak, 0, len(order))
	for _, bucket := range order {
		result = append(result, bucketPeak{Bucket: bucket, Peak: peaks[bucket]})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Bucket.Before(result[j].Bucket) })
	return result
}

// buildRecord derives the model feature fields for one bucket.
// occupancy_rate = 100 * peak / capacity, deliberately not clamped at
// 100: overshoot from missing exit scans stays visible in the data.
func (a *Aggregator) buildRecord(facility *entity.Facility, bucket bucketPeak, weather entity.Weather) entity.OccupancyRecord {
	day := isoWeekday(bucket.Bucket)
	weekend := 0
	if day >= 6 {
		weekend = 1
	}

	return entity.OccupancyRecord{
		Timestamp:        bucket.Bucket,
		FacilityID:       facility.ID,
		Hour:             bucket.Bucket.Hour(),
		Day:              day,
		Weekend:          weekend,
		Holiday:          holidayFlag(bucket.Bucket),
		EventFlag:        0, // enriched downstream from the event catalog
		ExamWeek:         0, // enriched downstream from the academic calendar
		ReservationCount: bucket.Peak,
		Temperature:      weather.Temperature,
		Rain:             weather.Rain,
		OccupancyRate:    100 * float64(bucket.Peak) / float64(facility.Capacity),
	}
}

// HourlyOccupancy returns the facility's per-hour occupancy rates for
// one date. entity.ErrNoData when nothing was recorded.
func (a *Aggregator) HourlyOccupancy(ctx context.Context, facilityID int, date string) (map[int]float64, error) {
	records, err := a.occupancyRepo.FindByFacilityAndDate(ctx, facilityID, date)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, entity.ErrNoData
	}

	hourly := make(map[int]float64, len(records))
	for _, record := range records {
		hourly[record.Hour] = record.OccupancyRate
	}
	return hourly, nil
}

// isoWeekday maps time.Weekday to the 1-7 numbering with Monday = 1.
func isoWeekday(t time.Time) int {
	day := int(t.Weekday())
	if day == 0 {
		return 7
	}
	return day
}

func holidayFlag(t time.Time) int {
	if officialHolidays[[2]int{int(t.Month()), t.Day()}] {
		return 1
	}
	return 0
}
