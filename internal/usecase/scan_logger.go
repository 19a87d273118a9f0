package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"
	"occupancy-service/pkg/logger"
	"occupancy-service/pkg/metrics"
)

// QRData is the optional payload carried by a scan, used until the
// gate hardware reports richer signals.
type QRData struct {
	OccupancyRate    *float64 `json:"occupancyRate,omitempty"`
	ReservationCount int      `json:"reservationCount"`
}

// DailyStats is the same-day entry counter state.
type DailyStats struct {
	Date         string      `json:"date"`
	TotalEntries int         `json:"totalEntries"`
	PerFacility  map[int]int `json:"perFacility"`
	MostPopular  int         `json:"mostPopular"` // facility id, 0 when no entries
}

// ScanLogger records individual QR gate entries as they happen: it
// bumps the same-day counter, appends a ground-truth row to the
// occupancy history, and triggers model retraining after every Nth
// new record on this path. The midnight rollover snapshots and clears
// the counter.
type ScanLogger struct {
	facilityRepo  repository.FacilityRepository
	occupancyRepo repository.OccupancyRepository
	snapshotRepo  repository.DailySnapshotRepository
	weather       repository.WeatherProvider
	predictor     repository.Predictor
	retrainEvery  int
	logger        logger.Logger
	metrics       *metrics.Metrics
	now           func() time.Time

	mu      sync.Mutex
	date    string
	counter map[int]int
}

// NewScanLogger creates a new scan logger
func NewScanLogger(
	facilityRepo repository.FacilityRepository,
	occupancyRepo repository.OccupancyRepository,
	snapshotRepo repository.DailySnapshotRepository,
	weather repository.WeatherProvider,
	predictor repository.Predictor,
	retrainEvery int,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *ScanLogger {
	now := time.Now
	return &ScanLogger{
		facilityRepo:  facilityRepo,
		occupancyRepo: occupancyRepo,
		snapshotRepo:  snapshotRepo,
		weather:       weather,
		predictor:     predictor,
		retrainEvery:  retrainEvery,
		logger:        logger,
		metrics:       metrics,
		now:           now,
		date:          now().Format("2006-01-02"),
		counter:       make(map[int]int),
	}
}

// LogEntry records one gate entry. The retraining trigger runs
// detached; its failure never fails the logging request.
func (s *ScanLogger) LogEntry(ctx context.Context, facilityID int, qr *QRData) (*entity.OccupancyRecord, error) {
	facility, err := s.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, fmt.Errorf("%w: facility %d", entity.ErrNotFound, facilityID)
		}
		return nil, fmt.Errorf("facility lookup failed: %w", err)
	}

	count := s.bump(facilityID)

	at := s.now()
	weather := s.weather.Current(ctx)

	day := isoWeekday(at)
	weekend := 0
	if day >= 6 {
		weekend = 1
	}

	rate := 50.0 // until gate hardware reports a live count
	reservations := 0
	if qr != nil {
		reservations = qr.ReservationCount
		if qr.OccupancyRate != nil {
			rate = *qr.OccupancyRate
		}
	}

	record := entity.OccupancyRecord{
		Timestamp:        at.Truncate(time.Hour),
		FacilityID:       facilityID,
		Hour:             at.Hour(),
		Day:              day,
		Weekend:          weekend,
		Holiday:          holidayFlag(at),
		EventFlag:        0,
		ExamWeek:         0,
		ReservationCount: reservations,
		Temperature:      weather.Temperature,
		Rain:             weather.Rain,
		OccupancyRate:    rate,
	}
	if err := s.occupancyRepo.AppendBatch(ctx, []entity.OccupancyRecord{record}); err != nil {
		return nil, fmt.Errorf("failed to append ground-truth record: %w", err)
	}

	s.metrics.ScansProcessed.Inc()
	s.logger.Info("Gate entry logged",
		"facility", facility.Name,
		"hour", at.Hour(),
		"dailyCount", count)

	s.maybeRetrain(ctx)
	return &record, nil
}

// bump increments the same-day counter, resetting it first when the
// calendar day has changed since the last entry.
func (s *ScanLogger) bump(facilityID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().Format("2006-01-02")
	if today != s.date {
		s.date = today
		s.counter = make(map[int]int)
	}
	s.counter[facilityID]++
	return s.counter[facilityID]
}

// maybeRetrain triggers retraining after every Nth ground-truth
// record, asynchronously.
func (s *ScanLogger) maybeRetrain(ctx context.Context) {
	count, err := s.occupancyRepo.Count(ctx)
	if err != nil || count == 0 || count%int64(s.retrainEvery) != 0 {
		return
	}

	s.logger.Info("Ground-truth record count reached retrain threshold", "count", count)
	go func() {
		retrainCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.predictor.Retrain(retrainCtx); err != nil {
			s.metrics.ErrorsCount.WithLabelValues("retrain").Inc()
			s.logger.Error("Retraining failed", "error", err)
			return
		}
		s.metrics.RetrainsTriggered.Inc()
	}()
}

// DailyStats returns the current same-day counter state.
func (s *ScanLogger) DailyStats() DailyStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := DailyStats{
		Date:        s.date,
		PerFacility: make(map[int]int, len(s.counter)),
	}
	best := 0
	for facilityID, count := range s.counter {
		stats.PerFacility[facilityID] = count
		stats.TotalEntries += count
		if count > best {
			best = count
			stats.MostPopular = facilityID
		}
	}
	return stats
}

// Rollover snapshots the day's counters and clears them. The
// scheduler fires it once at local midnight.
func (s *ScanLogger) Rollover(ctx context.Context) error {
	s.mu.Lock()
	date := s.date
	counter := s.counter
	s.counter = make(map[int]int)
	s.date = s.now().Format("2006-01-02")
	s.mu.Unlock()

	weather := s.weather.Current(ctx)
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return fmt.Errorf("rollover: bad counter date %q: %w", date, err)
	}

	weekend := 0
	if isoWeekday(day) >= 6 {
		weekend = 1
	}

	snapshot := &entity.DailySnapshot{
		Date:        date,
		PerFacility: make(map[string]int, len(counter)),
		Temperature: weather.Temperature,
		Rain:        weather.Rain,
		Weekend:     weekend,
		Holiday:     holidayFlag(day),
		CreatedAt:   s.now(),
	}
	for facilityID, count := range counter {
		snapshot.PerFacility[strconv.Itoa(facilityID)] = count
		snapshot.TotalEntries += count
	}

	if err := s.snapshotRepo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("rollover: failed to persist snapshot: %w", err)
	}

	s.logger.Info("Daily rollover complete", "date", date, "entries", snapshot.TotalEntries)
	return nil
}
