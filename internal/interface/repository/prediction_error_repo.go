package repository

import (
	"context"
	"errors"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// latest-only report snapshot lives under a fixed document id
const reportSnapshotID = "latest"

// MongoPredictionErrorRepository implements PredictionErrorRepository
type MongoPredictionErrorRepository struct {
	errors  *mongo.Collection
	reports *mongo.Collection
}

// NewMongoPredictionErrorRepository creates a new prediction error repository
func NewMongoPredictionErrorRepository(db *mongo.Database) repository.PredictionErrorRepository {
	errCollection := db.Collection("prediction_errors")

	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: 1}},
	}
	errCollection.Indexes().CreateOne(ctx, indexModel)

	return &MongoPredictionErrorRepository{
		errors:  errCollection,
		reports: db.Collection("performance_reports"),
	}
}

// Append adds one comparison record to the log.
func (r *MongoPredictionErrorRepository) Append(ctx context.Context, record *entity.PredictionError) error {
	if record.ID == "" {
		record.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.errors.InsertOne(ctx, record)
	return err
}

// FindSince returns records with timestamp >= since, oldest first.
func (r *MongoPredictionErrorRepository) FindSince(ctx context.Context, since time.Time) ([]entity.PredictionError, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.errors.Find(ctx, bson.M{"timestamp": bson.M{"$gte": since}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []entity.PredictionError
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FindRecent returns up to limit of the newest records, oldest first.
func (r *MongoPredictionErrorRepository) FindRecent(ctx context.Context, limit int) ([]entity.PredictionError, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.errors.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []entity.PredictionError
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	// reverse into chronological order
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Count returns the size of the error log.
func (r *MongoPredictionErrorRepository) Count(ctx context.Context) (int64, error) {
	return r.errors.CountDocuments(ctx, bson.M{})
}

// SaveReport overwrites the latest performance report snapshot.
func (r *MongoPredictionErrorRepository) SaveReport(ctx context.Context, report *entity.PerformanceReport) error {
	opts := options.Replace().SetUpsert(true)
	doc := bson.M{
		"_id":              reportSnapshotID,
		"generatedAt":      report.GeneratedAt,
		"totalPredictions": report.TotalPredictions,
		"trend30Days":      report.Trend30Days,
		"assessment":       report.Assessment,
		"overall":          report.Overall,
		"recommendations":  report.Recommendations,
	}
	_, err := r.reports.ReplaceOne(ctx, bson.M{"_id": reportSnapshotID}, doc, opts)
	return err
}

// LatestReport returns the current snapshot or entity.ErrNoData when
// no report has been generated yet.
func (r *MongoPredictionErrorRepository) LatestReport(ctx context.Context) (*entity.PerformanceReport, error) {
	var report entity.PerformanceReport
	err := r.reports.FindOne(ctx, bson.M{"_id": reportSnapshotID}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrNoData
		}
		return nil, err
	}
	return &report, nil
}
