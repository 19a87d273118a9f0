package repository

import (
	"context"
	"errors"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoReservationRepository implements ReservationRepository
type MongoReservationRepository struct {
	collection *mongo.Collection
}

// NewMongoReservationRepository creates a new reservation repository
func NewMongoReservationRepository(db *mongo.Database) repository.ReservationRepository {
	collection := db.Collection("reservations")

	ctx := context.Background()
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "facilityId", Value: 1}, {Key: "date", Value: 1}, {Key: "status", Value: 1}},
	})
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	})

	return &MongoReservationRepository{
		collection: collection,
	}
}

// Insert stores a new reservation.
func (r *MongoReservationRepository) Insert(ctx context.Context, reservation *entity.Reservation) error {
	_, err := r.collection.InsertOne(ctx, reservation)
	return err
}

// GetByID finds one reservation, entity.ErrNotFound when absent.
func (r *MongoReservationRepository) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	var reservation entity.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// Update replaces the stored reservation (status transitions only;
// reservations are never deleted).
func (r *MongoReservationRepository) Update(ctx context.Context, reservation *entity.Reservation) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": reservation.ID}, reservation)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// ByUser returns all of a user's reservations, any status.
func (r *MongoReservationRepository) ByUser(ctx context.Context, userID string) ([]entity.Reservation, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

// ActiveForDate returns active reservations for one facility/date.
func (r *MongoReservationRepository) ActiveForDate(ctx context.Context, facilityID int, date string) ([]entity.Reservation, error) {
	return r.find(ctx, bson.M{
		"facilityId": facilityID,
		"date":       date,
		"status":     entity.ReservationActive,
	})
}

// All returns the whole reservation store.
func (r *MongoReservationRepository) All(ctx context.Context) ([]entity.Reservation, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoReservationRepository) find(ctx context.Context, filter bson.M) ([]entity.Reservation, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reservations []entity.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}
