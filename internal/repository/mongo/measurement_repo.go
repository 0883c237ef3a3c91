package mongo

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const measurementCollectionName = "user_measurements"

// mongoMeasurementRepository implements repository.MeasurementRepository
type mongoMeasurementRepository struct {
	collection *mongo.Collection
}

// NewMongoMeasurementRepository creates a new UserMeasurement repository.
func NewMongoMeasurementRepository(db *mongo.Database) repository.MeasurementRepository {
	return &mongoMeasurementRepository{
		collection: db.Collection(measurementCollectionName),
	}
}

// Create inserts a measurement entry.
func (r *mongoMeasurementRepository) Create(ctx context.Context, m *domain.UserMeasurement) (primitive.ObjectID, error) {
	if m.UserID == primitive.NilObjectID || m.Date.IsZero() {
		return primitive.NilObjectID, errors.New("measurement requires userId and date")
	}
	m.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, m); err != nil {
		return primitive.NilObjectID, writeErr(err)
	}
	return m.ID, nil
}

// ListByUser retrieves a user's measurements, oldest first.
func (r *mongoMeasurementRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, from, to *time.Time) ([]domain.UserMeasurement, error) {
	query := bson.M{"userId": userID}
	// Open bounds are left out of the date clause
	date := bson.M{}
	if from != nil {
		date["$gte"] = *from
	}
	if to != nil {
		date["$lte"] = *to
	}
	if len(date) > 0 {
		query["date"] = date
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	return findAll[domain.UserMeasurement](ctx, r.collection, query, findOptions)
}

// EnsureMeasurementIndexes creates necessary indexes. Call during startup.
func EnsureMeasurementIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// History queries are always per user and ordered by date
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
