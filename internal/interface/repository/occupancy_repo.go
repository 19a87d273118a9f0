package repository

import (
	"context"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOccupancyRepository implements OccupancyRepository
type MongoOccupancyRepository struct {
	collection *mongo.Collection
}

// NewMongoOccupancyRepository creates a new occupancy history repository
func NewMongoOccupancyRepository(db *mongo.Database) repository.OccupancyRepository {
	collection := db.Collection("occupancy_records")

	// Index on (facilityId, timestamp) for history queries
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "facilityId", Value: 1}, {Key: "timestamp", Value: 1}},
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	return &MongoOccupancyRepository{
		collection: collection,
	}
}

// AppendBatch appends occupancy records. The store is append-only:
// there is no dedup against records already written for the same
// bucket; callers must not re-submit processed batches.
func (r *MongoOccupancyRepository) AppendBatch(ctx context.Context, records []entity.OccupancyRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(records))
	for i := range records {
		records[i].ID = primitive.NewObjectID().Hex()
		records[i].CreatedAt = time.Now()
		docs = append(docs, records[i])
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// FindByFacilityAndDate returns the facility's records whose hour
// bucket falls on the given local date.
func (r *MongoOccupancyRepository) FindByFacilityAndDate(ctx context.Context, facilityID int, date string) ([]entity.OccupancyRecord, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"facilityId": facilityID,
		"timestamp": bson.M{
			"$gte": day,
			"$lt":  day.AddDate(0, 0, 1),
		},
	}
	return r.find(ctx, filter)
}

// FindSince returns all records with timestamp >= since.
func (r *MongoOccupancyRepository) FindSince(ctx context.Context, since time.Time) ([]entity.OccupancyRecord, error) {
	return r.find(ctx, bson.M{"timestamp": bson.M{"$gte": since}})
}

// FindByDate returns all records whose bucket falls on the given
// local date, across facilities.
func (r *MongoOccupancyRepository) FindByDate(ctx context.Context, date string) ([]entity.OccupancyRecord, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"timestamp": bson.M{"$gte": day, "$lt": day.AddDate(0, 0, 1)}})
}

// Count returns the total number of records in the history.
func (r *MongoOccupancyRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *MongoOccupancyRepository) find(ctx context.Context, filter bson.M) ([]entity.OccupancyRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []entity.OccupancyRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
