package repository

import (
	"context"
	"errors"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDailySnapshotRepository implements DailySnapshotRepository
type MongoDailySnapshotRepository struct {
	collection *mongo.Collection
}

// NewMongoDailySnapshotRepository creates a new daily snapshot repository
func NewMongoDailySnapshotRepository(db *mongo.Database) repository.DailySnapshotRepository {
	return &MongoDailySnapshotRepository{
		collection: db.Collection("daily_snapshots"),
	}
}

// Save upserts the snapshot for its date. The rollover may re-fire
// after a restart on the same day; last write wins.
func (r *MongoDailySnapshotRepository) Save(ctx context.Context, snapshot *entity.DailySnapshot) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": snapshot.Date}, snapshot, opts)
	return err
}

// ByDate returns the snapshot for one date, entity.ErrNoData when absent.
func (r *MongoDailySnapshotRepository) ByDate(ctx context.Context, date string) (*entity.DailySnapshot, error) {
	var snapshot entity.DailySnapshot
	err := r.collection.FindOne(ctx, bson.M{"_id": date}).Decode(&snapshot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrNoData
		}
		return nil, err
	}
	return &snapshot, nil
}
