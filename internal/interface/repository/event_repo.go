package repository

import (
	"context"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormEventRepository implements the EventRepository interface
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GORM event repository
func NewGormEventRepository(db *gorm.DB) repository.EventRepository {
	return &GormEventRepository{
		db: db,
	}
}

// Events GORM model for database mapping
type Events struct {
	ID           uint    `gorm:"primaryKey"`
	Title        string  `gorm:"column:title"`
	Description  string  `gorm:"column:description;type:text"`
	Date         string  `gorm:"column:date;index"`
	Time         string  `gorm:"column:time"`
	Venue        string  `gorm:"column:venue"`
	FacilityID   int     `gorm:"column:facility_id;index"`
	ImpactRatio  float64 `gorm:"column:impact_ratio"`
	Participants int     `gorm:"column:participants"`
	Active       bool    `gorm:"column:active;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the default table name
func (Events) TableName() string {
	return "m_events"
}

// Add stores a new event, active by default.
func (r *GormEventRepository) Add(ctx context.Context, event *entity.Event) error {
	row := Events{
		Title:        event.Title,
		Description:  event.Description,
		Date:         event.Date,
		Time:         event.Time,
		Venue:        event.Venue,
		FacilityID:   event.FacilityID,
		ImpactRatio:  event.ImpactRatio,
		Participants: event.Participants,
		Active:       true,
	}
	result := r.db.WithContext(ctx).Create(&row)
	if result.Error != nil {
		return result.Error
	}
	event.ID = row.ID
	event.Active = true
	return nil
}

// ActiveOnDate returns active events on the given date.
func (r *GormEventRepository) ActiveOnDate(ctx context.Context, date string) ([]entity.Event, error) {
	var rows []Events
	result := r.db.WithContext(ctx).Where("active = ? AND date = ?", true, date).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEventEntities(rows), nil
}

// ByFacility returns active events hosted at one facility.
func (r *GormEventRepository) ByFacility(ctx context.Context, facilityID int) ([]entity.Event, error) {
	var rows []Events
	result := r.db.WithContext(ctx).Where("active = ? AND facility_id = ?", true, facilityID).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEventEntities(rows), nil
}

// Upcoming returns active events between from and to inclusive,
// ordered by date.
func (r *GormEventRepository) Upcoming(ctx context.Context, from string, to string) ([]entity.Event, error) {
	var rows []Events
	result := r.db.WithContext(ctx).
		Where("active = ? AND date >= ? AND date <= ?", true, from, to).
		Order("date").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEventEntities(rows), nil
}

// ActiveImpact sums the impact ratios of the facility's active events
// on the given date, capped at 1.0.
func (r *GormEventRepository) ActiveImpact(ctx context.Context, facilityID int, date string) (float64, error) {
	var rows []Events
	result := r.db.WithContext(ctx).
		Where("active = ? AND facility_id = ? AND date = ?", true, facilityID, date).
		Find(&rows)
	if result.Error != nil {
		return 0, result.Error
	}

	total := 0.0
	for i := range rows {
		total += rows[i].ImpactRatio
	}
	if total > 1.0 {
		total = 1.0
	}
	return total, nil
}

func toEventEntities(rows []Events) []entity.Event {
	events := make([]entity.Event, 0, len(rows))
	for i := range rows {
		events = append(events, entity.Event{
			ID:           rows[i].ID,
			Title:        rows[i].Title,
			Description:  rows[i].Description,
			Date:         rows[i].Date,
			Time:         rows[i].Time,
			Venue:        rows[i].Venue,
			FacilityID:   rows[i].FacilityID,
			ImpactRatio:  rows[i].ImpactRatio,
			Participants: rows[i].Participants,
			Active:       rows[i].Active,
			CreatedAt:    rows[i].CreatedAt,
			UpdatedAt:    rows[i].UpdatedAt,
		})
	}
	return events
}
