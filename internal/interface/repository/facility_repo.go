package repository

import (
	"context"
	"errors"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormFacilityRepository implements the FacilityRepository interface
type GormFacilityRepository struct {
	db *gorm.DB
}

// NewGormFacilityRepository creates a new GORM facility repository
func NewGormFacilityRepository(db *gorm.DB) repository.FacilityRepository {
	return &GormFacilityRepository{
		db: db,
	}
}

// Facilities GORM model for database mapping
type Facilities struct {
	ID        int    `gorm:"primaryKey"`
	Name      string `gorm:"column:name;unique"`
	Type      string `gorm:"column:type;index"`
	Capacity  int    `gorm:"column:capacity"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Facilities) TableName() string {
	return "m_facilities"
}

// GetByID finds a facility by id. Returns entity.ErrNotFound for
// unknown ids so callers can distinguish absence from I/O failure.
func (r *GormFacilityRepository) GetByID(ctx context.Context, id int) (*entity.Facility, error) {
	var facility Facilities
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&facility)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, result.Error
	}

	return toFacilityEntity(&facility), nil
}

// GetByType returns all facilities of one type.
func (r *GormFacilityRepository) GetByType(ctx context.Context, facilityType string) ([]entity.Facility, error) {
	var rows []Facilities
	result := r.db.WithContext(ctx).Where("type = ?", facilityType).Order("id").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	facilities := make([]entity.Facility, 0, len(rows))
	for i := range rows {
		facilities = append(facilities, *toFacilityEntity(&rows[i]))
	}
	return facilities, nil
}

// All returns the whole registry ordered by id.
func (r *GormFacilityRepository) All(ctx context.Context) ([]entity.Facility, error) {
	var rows []Facilities
	result := r.db.WithContext(ctx).Order("id").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	facilities := make([]entity.Facility, 0, len(rows))
	for i := range rows {
		facilities = append(facilities, *toFacilityEntity(&rows[i]))
	}
	return facilities, nil
}

// Convert GORM model to domain entity
func toFacilityEntity(row *Facilities) *entity.Facility {
	return &entity.Facility{
		ID:       row.ID,
		Name:     row.Name,
		Type:     row.Type,
		Capacity: row.Capacity,
	}
}
