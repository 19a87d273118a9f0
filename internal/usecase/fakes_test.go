package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/pkg/logger"
	"occupancy-service/pkg/metrics"
)

// promauto registers on the default registry, so the whole package
// shares one instance.
var testMetrics = metrics.NewMetrics("test")

type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Fatal(msg string, keysAndValues ...interface{}) {}
func (nopLogger) With(keysAndValues ...interface{}) logger.Logger {
	return nopLogger{}
}

type fakeFacilityRepo struct {
	facilities map[int]entity.Facility
}

func (f *fakeFacilityRepo) GetByID(ctx context.Context, id int) (*entity.Facility, error) {
	facility, ok := f.facilities[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &facility, nil
}

func (f *fakeFacilityRepo) GetByType(ctx context.Context, facilityType string) ([]entity.Facility, error) {
	var out []entity.Facility
	for _, facility := range f.facilities {
		if strings.EqualFold(facility.Type, facilityType) {
			out = append(out, facility)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFacilityRepo) All(ctx context.Context) ([]entity.Facility, error) {
	out := make([]entity.Facility, 0, len(f.facilities))
	for _, facility := range f.facilities {
		out = append(out, facility)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeOccupancyRepo struct {
	mu        sync.Mutex
	records   []entity.OccupancyRecord
	appendErr error
}

func (f *fakeOccupancyRepo) AppendBatch(ctx context.Context, records []entity.OccupancyRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeOccupancyRepo) FindByFacilityAndDate(ctx context.Context, facilityID int, date string) ([]entity.OccupancyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.OccupancyRecord
	for _, record := range f.records {
		if record.FacilityID == facilityID && record.Timestamp.Format("2006-01-02") == date {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeOccupancyRepo) FindSince(ctx context.Context, since time.Time) ([]entity.OccupancyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.OccupancyRecord
	for _, record := range f.records {
		if !record.Timestamp.Before(since) {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeOccupancyRepo) FindByDate(ctx context.Context, date string) ([]entity.OccupancyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.OccupancyRecord
	for _, record := range f.records {
		if record.Timestamp.Format("2006-01-02") == date {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeOccupancyRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), nil
}

type fakeWeather struct {
	weather entity.Weather
}

func (f *fakeWeather) Current(ctx context.Context) entity.Weather {
	return f.weather
}

type fakePredictor struct {
	predictFn  func(facilityID int) (*entity.Prediction, error)
	retrainErr error
	retrains   atomic.Int32
}

func (f *fakePredictor) Predict(ctx context.Context, facilityID, reservationCount, examWeek int) (*entity.Prediction, error) {
	if f.predictFn != nil {
		return f.predictFn(facilityID)
	}
	return &entity.Prediction{FacilityID: facilityID, OccupancyRate: 50}, nil
}

func (f *fakePredictor) Retrain(ctx context.Context) error {
	f.retrains.Add(1)
	return f.retrainErr
}

type fakeErrorRepo struct {
	mu      sync.Mutex
	records []entity.PredictionError
	report  *entity.PerformanceReport
}

func (f *fakeErrorRepo) Append(ctx context.Context, record *entity.PredictionError) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeErrorRepo) FindSince(ctx context.Context, since time.Time) ([]entity.PredictionError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.PredictionError
	for _, record := range f.records {
		if !record.Timestamp.Before(since) {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeErrorRepo) FindRecent(ctx context.Context, limit int) ([]entity.PredictionError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.PredictionError, len(f.records))
	copy(out, f.records)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeErrorRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), nil
}

func (f *fakeErrorRepo) SaveReport(ctx context.Context, report *entity.PerformanceReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.report = report
	return nil
}

func (f *fakeErrorRepo) LatestReport(ctx context.Context) (*entity.PerformanceReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.report == nil {
		return nil, entity.ErrNoData
	}
	return f.report, nil
}

type fakeEventRepo struct {
	impact map[int]float64
	err    error
}

func (f *fakeEventRepo) Add(ctx context.Context, event *entity.Event) error { return nil }

func (f *fakeEventRepo) ActiveOnDate(ctx context.Context, date string) ([]entity.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) ByFacility(ctx context.Context, facilityID int) ([]entity.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) Upcoming(ctx context.Context, from, to string) ([]entity.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) ActiveImpact(ctx context.Context, facilityID int, date string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.impact[facilityID], nil
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[string]entity.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[string]entity.Reservation)}
}

func (f *fakeReservationRepo) Insert(ctx context.Context, reservation *entity.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reservations[reservation.ID] = *reservation
	return nil
}

func (f *fakeReservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reservation, ok := f.reservations[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &reservation, nil
}

func (f *fakeReservationRepo) Update(ctx context.Context, reservation *entity.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reservations[reservation.ID]; !ok {
		return entity.ErrNotFound
	}
	f.reservations[reservation.ID] = *reservation
	return nil
}

func (f *fakeReservationRepo) ByUser(ctx context.Context, userID string) ([]entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Reservation
	for _, reservation := range f.reservations {
		if reservation.UserID == userID {
			out = append(out, reservation)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ActiveForDate(ctx context.Context, facilityID int, date string) ([]entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Reservation
	for _, reservation := range f.reservations {
		if reservation.FacilityID == facilityID && reservation.Date == date && reservation.Status == entity.ReservationActive {
			out = append(out, reservation)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) All(ctx context.Context) ([]entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Reservation, 0, len(f.reservations))
	for _, reservation := range f.reservations {
		out = append(out, reservation)
	}
	return out, nil
}

type fakeSnapshotRepo struct {
	mu        sync.Mutex
	snapshots map[string]*entity.DailySnapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{snapshots: make(map[string]*entity.DailySnapshot)}
}

func (f *fakeSnapshotRepo) Save(ctx context.Context, snapshot *entity.DailySnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[snapshot.Date] = snapshot
	return nil
}

func (f *fakeSnapshotRepo) ByDate(ctx context.Context, date string) (*entity.DailySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot, ok := f.snapshots[date]
	if !ok {
		return nil, entity.ErrNoData
	}
	return snapshot, nil
}
